package login

import (
	"errors"
	"fmt"

	"github.com/udisondev/gserver/internal/crypto"
	"github.com/udisondev/gserver/internal/model"
)

// ErrUnknownRole is returned for a role shift outside the role table.
var ErrUnknownRole = errors.New("unknown role")

// Role is the client's privilege class as a bitmask (1 << shift).
type Role uint32

// RoleInfo is one row of the role table. The same row decides key presence and
// generation, so the two can never disagree.
type RoleInfo struct {
	Name       string
	Shift      int
	HasKey     bool
	Generation crypto.Generation
	// RequiredPermission must be granted to the account; 0 for ordinary players.
	RequiredPermission uint32
}

// Role returns the bitmask of this row.
func (ri RoleInfo) Role() Role {
	return Role(1) << ri.Shift
}

// Role shifts.
const (
	ShiftClient    = 0
	ShiftRC        = 1
	ShiftNPCServer = 2
	ShiftNC        = 3
	ShiftClient2   = 4
	ShiftClient3   = 5
	ShiftRC2       = 6
	ShiftWeb       = 7
	ShiftBridge    = 8
)

var roleTable = [...]RoleInfo{
	ShiftClient:    {Name: "CLIENT", Shift: ShiftClient, HasKey: false, Generation: crypto.Gen2},
	ShiftRC:        {Name: "RC", Shift: ShiftRC, HasKey: false, Generation: crypto.Gen2, RequiredPermission: model.PermRemoteControl},
	ShiftNPCServer: {Name: "NPCSERVER", Shift: ShiftNPCServer, HasKey: true, Generation: crypto.Gen3, RequiredPermission: model.PermNPCServer},
	ShiftNC:        {Name: "NC", Shift: ShiftNC, HasKey: true, Generation: crypto.Gen3, RequiredPermission: model.PermNPCControl},
	ShiftClient2:   {Name: "CLIENT2", Shift: ShiftClient2, HasKey: true, Generation: crypto.Gen4},
	ShiftClient3:   {Name: "CLIENT3", Shift: ShiftClient3, HasKey: true, Generation: crypto.Gen5},
	ShiftRC2:       {Name: "RC2", Shift: ShiftRC2, HasKey: true, Generation: crypto.Gen5, RequiredPermission: model.PermRemoteControl},
	ShiftWeb:       {Name: "WEB", Shift: ShiftWeb, HasKey: false, Generation: crypto.Gen1},
	ShiftBridge:    {Name: "BRIDGE", Shift: ShiftBridge, HasKey: false, Generation: crypto.Gen6},
}

// RoleFromShift looks up the role table.
func RoleFromShift(shift int) (RoleInfo, error) {
	if shift < 0 || shift >= len(roleTable) {
		return RoleInfo{}, fmt.Errorf("%w: shift %d", ErrUnknownRole, shift)
	}
	return roleTable[shift], nil
}

func (r Role) String() string {
	for _, ri := range roleTable {
		if ri.Role() == r {
			return ri.Name
		}
	}
	return fmt.Sprintf("ROLE(0x%X)", uint32(r))
}
