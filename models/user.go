// models/user.go
package models

import "time"

// Role is a user's position on the permission ladder.
type Role string

const (
	RoleVisitor Role = "visitor"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

var roleRank = map[Role]int{
	RoleVisitor: 0,
	RoleManager: 1,
	RoleAdmin:   2,
}

// AtLeast reports whether r grants everything min grants.
// Unknown roles rank below visitor.
func (r Role) AtLeast(min Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	return have >= roleRank[min]
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// User is a chat account known to the bot.
type User struct {
	ID        string    `bson:"id" json:"id"` // chat/account id
	Role      Role      `bson:"role" json:"role"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
