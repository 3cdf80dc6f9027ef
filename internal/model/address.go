package model

// Address identifies a participant account or an asset contract.
// The empty string is the unset/zero sentinel.
type Address string

const ZeroAddress Address = ""

func (a Address) IsZero() bool {
	return a == ZeroAddress
}
