package server

import (
	"github.com/udisondev/gserver/internal/codec"
	"github.com/udisondev/gserver/internal/constants"
	"github.com/udisondev/gserver/internal/model"
	"github.com/udisondev/gserver/internal/protocol"
)

// Player property ids carried by the PlayerProps message.
const (
	propNickname = 0
	propMaxPower = 1
	propCurPower = 2
	propRupees   = 3
)

// fileMessageOverhead bounds the bytes a File message adds around the file body:
// raw-data envelope, inner type, mod time and name.
const fileMessageOverhead = 1 + codec.SizeGInt4 + 1 + codec.SizeGUInt5 + 1 + codec.MaxGString

func signatureMessage() protocol.Message {
	return protocol.NewServerMessage(protocol.ServerSignature,
		codec.AppendGChar(nil, constants.SignatureValue))
}

func playerPropsMessage(acc *model.Account) protocol.Message {
	w := codec.NewWriter(64)
	w.WriteGChar(propNickname).WriteGString(acc.Nickname)
	w.WriteGChar(propMaxPower).WriteGChar(acc.MaxHitPoints)
	w.WriteGChar(propCurPower).WriteGChar(int(acc.HitPoints * 2))
	w.WriteGChar(propRupees).WriteGInt(acc.Rupees)
	return protocol.NewServerMessage(protocol.ServerPlayerProps, w.Bytes())
}

func levelNameMessage(name string) protocol.Message {
	return protocol.NewServerMessage(protocol.ServerLevelName, []byte(name))
}

// boardMessage wraps the tiles in a raw-data envelope: the inner message is a
// BoardPacket whose body may contain newline bytes.
func boardMessage(board []byte) protocol.Message {
	w := codec.NewWriter(1 + len(board))
	w.WriteGChar(int(protocol.ServerBoardPacket)).WriteBytes(board)
	return protocol.NewServerMessage(protocol.ServerRawData, w.Bytes())
}

// fileMessage carries a downloadable file inside a raw-data envelope.
func fileMessage(name string, modTime uint32, data []byte) protocol.Message {
	w := codec.NewWriter(1 + codec.SizeGUInt5 + 1 + len(name) + len(data))
	w.WriteGChar(int(protocol.ServerFile)).
		WriteGUInt5(modTime).
		WriteGString(name).
		WriteBytes(data)
	return protocol.NewServerMessage(protocol.ServerRawData, w.Bytes())
}

func fileSendFailedMessage(name string) protocol.Message {
	return protocol.NewServerMessage(protocol.ServerFileSendFailed, []byte(name))
}

func discMessage(reason string) protocol.Message {
	return protocol.NewServerMessage(protocol.ServerDiscMessage, []byte(reason))
}
