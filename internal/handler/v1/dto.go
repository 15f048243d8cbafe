package v1

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/client"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/service"
)

type createClientRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	AreasOfConcern string `json:"areasOfConcern"`
}

type clientResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	AreasOfConcern string    `json:"areasOfConcern,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toClientResponse(c *client.Client) *clientResponse {
	if c == nil {
		return nil
	}
	return &clientResponse{
		ID:             c.ID.String(),
		Name:           c.Name,
		Email:          c.Email,
		Phone:          c.Phone,
		AreasOfConcern: c.AreasOfConcern,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toClientResponses(list []*client.Client) []*clientResponse {
	out := make([]*clientResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toClientResponse(c))
	}
	return out
}

// createAppointmentRequest keeps every field loosely typed so that absent
// and malformed values are reported by the scheduling engine itself.
type createAppointmentRequest struct {
	ClientID      string `json:"clientId"`
	Treatment     string `json:"treatment"`
	Duration      int    `json:"duration"`
	StartTime     string `json:"startTime"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

type updateAppointmentRequest struct {
	StartTime     *string `json:"startTime"`
	Duration      *int    `json:"duration"`
	Treatment     *string `json:"treatment"`
	Status        *string `json:"status"`
	PaymentStatus *string `json:"paymentStatus"`
}

func (r *updateAppointmentRequest) toCommand() *appointment.UpdateAppointmentCommand {
	cmd := &appointment.UpdateAppointmentCommand{StartTime: r.StartTime}
	if r.Duration != nil {
		d := appointment.Duration(*r.Duration)
		cmd.Duration = &d
	}
	if r.Treatment != nil {
		t := appointment.Treatment(*r.Treatment)
		cmd.Treatment = &t
	}
	if r.Status != nil {
		s := appointment.Status(*r.Status)
		cmd.Status = &s
	}
	if r.PaymentStatus != nil {
		p := appointment.PaymentStatus(*r.PaymentStatus)
		cmd.PaymentStatus = &p
	}
	return cmd
}

type appointmentResponse struct {
	ID            string          `json:"id"`
	ClientID      string          `json:"clientId"`
	Client        *clientResponse `json:"client,omitempty"`
	Treatment     string          `json:"treatment"`
	Duration      int             `json:"duration"`
	StartTime     time.Time       `json:"startTime"`
	EndTime       time.Time       `json:"endTime"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func toAppointmentResponse(a *appointment.Appointment, c *client.Client) *appointmentResponse {
	return &appointmentResponse{
		ID:            a.ID.String(),
		ClientID:      a.ClientID.String(),
		Client:        toClientResponse(c),
		Treatment:     string(a.Treatment),
		Duration:      int(a.Duration),
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Status:        string(a.Status),
		PaymentStatus: string(a.PaymentStatus),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func toDetailResponses(list []*service.AppointmentDetails) []*appointmentResponse {
	out := make([]*appointmentResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toAppointmentResponse(d.Appointment, d.Client))
	}
	return out
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
