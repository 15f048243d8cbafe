package client

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name           string `gorm:"column:name;type:varchar(200);not null;index"`
	Email          string `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	Phone          string `gorm:"column:phone;type:varchar(30)"`
	AreasOfConcern string `gorm:"column:areas_of_concern;type:text"`
}

func (Client) TableName() string {
	return "spa.clients"
}

type CreateClientCommand struct {
	Name           string
	Email          string
	Phone          string
	AreasOfConcern string
}

// Normalize trims every field and lowercases the email, the form in which
// clients are stored and compared.
func (c *CreateClientCommand) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.AreasOfConcern = strings.TrimSpace(c.AreasOfConcern)
}
