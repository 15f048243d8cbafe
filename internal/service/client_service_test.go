package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/client"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCreateClient(t *testing.T) {
	h := newHarness(t)

	c, err := h.clients.CreateClient(context.Background(), &client.CreateClientCommand{
		Name:  "  Grace Hopper ",
		Email: " Grace@Example.COM ",
		Phone: " 555-0199 ",
	}, h.actor)
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if c.Name != "Grace Hopper" || c.Email != "grace@example.com" || c.Phone != "555-0199" {
		t.Errorf("client not normalised: %+v", c)
	}
	if got := testutil.ToFloat64(h.metrics.ClientsCreated); got != 1 {
		t.Errorf("ClientsCreated = %v", got)
	}

	tests := []struct {
		name string
		cmd  client.CreateClientCommand
		want error
	}{
		{"duplicate email differing in case", client.CreateClientCommand{Name: "Other", Email: "GRACE@example.com"}, client.ErrClientAlreadyExists},
		{"missing name", client.CreateClientCommand{Email: "x@example.com"}, nil},
		{"blank email", client.CreateClientCommand{Name: "X", Email: "   "}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.clients.CreateClient(context.Background(), &tt.cmd, h.actor)
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Fatalf("err = %v, want %v", err, tt.want)
				}
				return
			}
			var verr *service.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestSearchClients(t *testing.T) {
	h := newHarness(t)
	h.client(t, "Ada Lovelace", "ada@example.com")
	h.client(t, "Bob Marley", "bob@reggae.org")
	h.client(t, "Adam Smith", "adam@example.com")

	tests := []struct {
		term string
		want int
	}{
		{"", 3},
		{"ADA", 2},
		{"reggae", 1},
		{"nobody", 0},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, err := h.clients.SearchClients(context.Background(), tt.term)
			if err != nil {
				t.Fatalf("SearchClients: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d clients, want %d", len(got), tt.want)
			}
		})
	}
}
