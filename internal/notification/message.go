package notification

import "fmt"

// Message is the push payload shown to a student.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

const applyDateLayout = "January 2, 2006"

// Render turns an event into the student-facing message.
func Render(evt Event) Message {
	switch evt.Kind {
	case KindSubmitted:
		return Message{
			Title: "Application submitted",
			Body:  fmt.Sprintf("Hi %s, your application for %s has been submitted%s.", evt.StudentName, evt.ResidenceName, onDate(evt)),
		}
	case KindApproved:
		return Message{
			Title: "Application approved",
			Body:  fmt.Sprintf("Hi %s, your application for %s%s has been approved. Accept or decline the offer in your portal.", evt.StudentName, evt.ResidenceName, fromDate(evt)),
		}
	case KindRejected:
		return Message{
			Title: "Application unsuccessful",
			Body:  fmt.Sprintf("Hi %s, your application for %s was not successful this time.", evt.StudentName, evt.ResidenceName),
		}
	case KindAccepted:
		body := fmt.Sprintf("Hi %s, you have accepted your offer at %s.", evt.StudentName, evt.ResidenceName)
		if evt.RoomNumber != nil && *evt.RoomNumber != "" {
			body = fmt.Sprintf("Hi %s, you have accepted your offer at %s. Your room is %s.", evt.StudentName, evt.ResidenceName, *evt.RoomNumber)
		}
		return Message{Title: "Offer accepted", Body: body}
	case KindOfferRejected:
		return Message{
			Title: "Offer declined",
			Body:  fmt.Sprintf("Hi %s, you have declined your offer at %s. You can submit a new application at any time.", evt.StudentName, evt.ResidenceName),
		}
	}
	return Message{Title: "Housing update", Body: fmt.Sprintf("Hi %s, there is an update on your housing application.", evt.StudentName)}
}

func onDate(evt Event) string {
	if evt.ApplyDate == nil {
		return ""
	}
	return " on " + evt.ApplyDate.Format(applyDateLayout)
}

func fromDate(evt Event) string {
	if evt.ApplyDate == nil {
		return ""
	}
	return " (applied " + evt.ApplyDate.Format(applyDateLayout) + ")"
}
