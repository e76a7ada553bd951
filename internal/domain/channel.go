package domain

import (
	"fmt"
	"strings"
)

// Channel identifies one of the three money categories a distributor sells
// through. ChannelA and ChannelB are pre-paid credit lines with a daily
// ceiling; ChannelC is cash and has none.
type Channel string

const (
	ChannelA Channel = "channelA"
	ChannelB Channel = "channelB"
	ChannelC Channel = "channelC"
)

// Channels lists every channel in display order.
var Channels = []Channel{ChannelA, ChannelB, ChannelC}

// CreditChannels lists the channels bounded by an opening balance.
var CreditChannels = []Channel{ChannelA, ChannelB}

// ParseChannel converts a wire tag into a Channel.
func ParseChannel(s string) (Channel, error) {
	switch c := Channel(strings.TrimSpace(s)); c {
	case ChannelA, ChannelB, ChannelC:
		return c, nil
	default:
		return "", &ErrValidation{Field: "channel", Message: fmt.Sprintf("unknown channel %q", s)}
	}
}

// Valid reports whether c is one of the three known channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelA, ChannelB, ChannelC:
		return true
	}
	return false
}

// IsCredit reports whether sales on c are capped by the opening balance.
func (c Channel) IsCredit() bool {
	switch c {
	case ChannelA, ChannelB:
		return true
	case ChannelC:
		return false
	}
	return false
}

func (c Channel) String() string { return string(c) }
