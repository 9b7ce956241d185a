package protocol

import (
	"errors"
	"fmt"
)

// ErrInvalidType is returned for a type byte that does not map to a message type.
var ErrInvalidType = errors.New("invalid message type")

// MaxType is the largest type a GChar type byte can carry.
const MaxType = 223

// ServerType identifies a server → client message.
type ServerType uint8

// Server message types used by the engine itself. Everything else belongs to game logic.
const (
	ServerLevelBoard     ServerType = 0
	ServerLevelName      ServerType = 6
	ServerPlayerProps    ServerType = 9
	ServerDiscMessage    ServerType = 16
	ServerSignature      ServerType = 25
	ServerFileSendFailed ServerType = 30
	ServerServerText     ServerType = 82
	ServerRawData        ServerType = 100 // literal wire byte; type 68 shares it and is never sent
	ServerBoardPacket    ServerType = 101
	ServerFile           ServerType = 102
)

var serverTypeNames = map[ServerType]string{
	ServerLevelBoard:     "LEVELBOARD",
	ServerLevelName:      "LEVELNAME",
	ServerPlayerProps:    "PLAYERPROPS",
	ServerDiscMessage:    "DISCMESSAGE",
	ServerSignature:      "SIGNATURE",
	ServerFileSendFailed: "FILESENDFAILED",
	ServerServerText:     "SERVERTEXT",
	ServerRawData:        "RAWDATA",
	ServerBoardPacket:    "BOARDPACKET",
	ServerFile:           "FILE",
}

func (t ServerType) String() string {
	if name, ok := serverTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PLO_%d", uint8(t))
}

// ClientType identifies a client → server message.
type ClientType uint8

const (
	ClientLevelWarp   ClientType = 0
	ClientPlayerProps ClientType = 2
	ClientToAll       ClientType = 6
	ClientWantFile    ClientType = 23
	ClientUpdateFile  ClientType = 34
	ClientLanguage    ClientType = 37
	ClientRawData     ClientType = 50
)

var clientTypeNames = map[ClientType]string{
	ClientLevelWarp:   "LEVELWARP",
	ClientPlayerProps: "PLAYERPROPS",
	ClientToAll:       "TOALL",
	ClientWantFile:    "WANTFILE",
	ClientUpdateFile:  "UPDATEFILE",
	ClientLanguage:    "LANGUAGE",
	ClientRawData:     "RAWDATA",
}

func (t ClientType) String() string {
	if name, ok := clientTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PLI_%d", uint8(t))
}

// ParseType decodes a GChar type byte. Bytes below the +32 offset do not describe a type.
func ParseType(b byte) (uint8, error) {
	v := int(b) - 32
	if v < 0 || v > MaxType {
		return 0, fmt.Errorf("%w: byte 0x%02X", ErrInvalidType, b)
	}
	return uint8(v), nil
}
