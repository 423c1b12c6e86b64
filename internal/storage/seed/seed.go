// Package seed holds the demo feed loaded into fresh stores.
package seed

import (
	"time"

	"github.com/CaioAP/scuderia/internal/models"
)

// ViewerID is the user whose likes are part of the demo dataset.
const ViewerID int64 = 1

// Data is a complete feed: users, messages and who liked what.
type Data struct {
	Users    []*models.User
	Messages []*models.Message
	Likes    map[int64][]int64 // messageID -> userIDs
}

// Feed builds the demo feed with timestamps relative to now.
func Feed(now time.Time) Data {
	users := []*models.User{
		{ID: 1, Name: "Alice Johnson", Label: "alice.johnson", Avatar: "/images/avatars/alice.jpg", JobPosition: "Product Manager"},
		{ID: 2, Name: "Bob Smith", Label: "bob.smith", Avatar: "/images/avatars/bob.jpg", JobPosition: "Senior Developer"},
		{ID: 3, Name: "Carol Davis", Label: "carol.davis", Avatar: "/images/avatars/carol.jpg", JobPosition: "UX Designer"},
		{ID: 4, Name: "David Wilson", Label: "david.wilson", Avatar: "/images/avatars/david.jpg", JobPosition: "Marketing Lead"},
		{ID: 5, Name: "Emma Brown", Label: "emma.brown", Avatar: "/images/avatars/emma.jpg", JobPosition: "HR Manager"},
	}
	alice, bob, carol, david, emma := users[0], users[1], users[2], users[3], users[4]

	now = now.UTC()
	ago := func(d time.Duration) time.Time { return now.Add(-d) }

	msgs := []*models.Message{
		{
			ID:        1,
			Content:   "<p>Welcome to our new employee engagement platform! 🎉 We're excited to have everyone on board and look forward to better communication and collaboration.</p>",
			Author:    emma,
			CreatedAt: ago(2 * time.Hour),
			LikeCount: 12,
		},
		{
			ID:        2,
			Content:   "<p>Great job on the Q4 product launch! 🚀</p><p><strong>Key achievements:</strong></p><ul><li>Delivered on time</li><li>Exceeded user engagement targets by 25%</li><li>Positive customer feedback</li></ul><p>Thank you to everyone who contributed!</p>",
			Author:    alice,
			CreatedAt: ago(4 * time.Hour),
			LikeCount: 8,
		},
		{
			ID:        3,
			Content:   `<p>Just pushed the latest updates to the design system. 🎨</p><p>New components include:</p><ul><li>Enhanced button variants</li><li>Improved form controls</li><li>Updated color palette</li></ul><p>Check out the <a href="/design-system">design system docs</a> for details!</p>`,
			Author:    carol,
			CreatedAt: ago(6 * time.Hour),
			LikeCount: 15,
		},
		{
			ID:        4,
			Content:   "<p>Reminder: Team building event this Friday at 3 PM! 🎯</p><p>We'll be doing some fun activities in the main conference room. Pizza and drinks will be provided. Looking forward to seeing everyone there!</p>",
			Author:    emma,
			CreatedAt: ago(24 * time.Hour),
			LikeCount: 23,
		},
		{
			ID:        5,
			Content:   "<p>Code review best practices session was fantastic! 👨‍💻</p><p>Key takeaways:</p><ol><li>Focus on readability and maintainability</li><li>Provide constructive feedback</li><li>Test edge cases thoroughly</li></ol><p>Thanks to everyone who attended and shared their insights.</p>",
			Author:    bob,
			CreatedAt: ago(2 * 24 * time.Hour),
			LikeCount: 7,
		},
		{
			ID:        6,
			Content:   "<p>Exciting news! 📈 Our latest marketing campaign achieved:</p><ul><li><strong>150% increase</strong> in website traffic</li><li><strong>85% boost</strong> in lead generation</li><li><strong>40% improvement</strong> in conversion rates</li></ul><p>Fantastic work from the entire marketing team!</p>",
			Author:    david,
			CreatedAt: ago(3 * 24 * time.Hour),
			LikeCount: 19,
		},
		{
			ID:        7,
			Content:   "<p>Monthly all-hands meeting scheduled for next Tuesday at 10 AM. 📅</p><p><em>Agenda includes:</em></p><ul><li>Q1 goals and objectives</li><li>Department updates</li><li>New hire introductions</li><li>Q&A session</li></ul><p>Please come prepared with any questions or topics you'd like to discuss.</p>",
			Author:    emma,
			CreatedAt: ago(5 * 24 * time.Hour),
			LikeCount: 11,
		},
	}

	return Data{
		Users:    users,
		Messages: msgs,
		Likes: map[int64][]int64{
			2: {ViewerID},
			4: {ViewerID},
			6: {ViewerID},
		},
	}
}

// Notifications is the demo notification list.
func Notifications() []*models.Notification {
	avatar := "/images/avatars/caio.jpg"
	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	n := func(id int64, read bool, createdAt string) *models.Notification {
		a := avatar
		return &models.Notification{
			ID:        id,
			Read:      read,
			Initials:  "CA",
			Name:      "Caio Alfonso",
			Label:     "sent you a message",
			Avatar:    &a,
			CreatedAt: at(createdAt),
		}
	}
	return []*models.Notification{
		n(1, false, "2025-12-23T23:38:00Z"),
		n(2, false, "2025-12-15T12:00:00Z"),
		n(3, true, "2025-12-10T12:00:00Z"),
		n(4, false, "2025-12-05T12:00:00Z"),
		n(5, true, "2025-12-01T12:00:00Z"),
	}
}
