package measurement

import "fmt"

// Channel is one of the two measurement polarities
type Channel byte

const (
	ChannelN Channel = 'N'
	ChannelP Channel = 'P'
)

// String returns "N" or "P"
func (c Channel) String() string { return string(rune(c)) }

// Valid reports whether c is N or P
func (c Channel) Valid() bool { return c == ChannelN || c == ChannelP }

// DecodedKey is the (device code, channel) pair recovered from a record identifier
type DecodedKey struct {
	DeviceCode string
	Channel    Channel
}

func (k DecodedKey) String() string {
	return fmt.Sprintf("%s/%s", k.DeviceCode, k.Channel)
}

// RawRecord is one data row after the table schema has been applied.
// IndexLabels is shared by every record of a sheet and Values is parallel to it.
type RawRecord struct {
	Row         int
	Identifier  Cell
	IndexLabels []IndexLabel
	SpecLow     *float64
	Target      *float64
	SpecHigh    *float64
	Values      []*float64
}

// Sample is a single (index label, value) measurement
type Sample struct {
	Index IndexLabel
	Value float64
}

// SpecLimits holds the optional low/target/high specification fields of a record
type SpecLimits struct {
	Low    *float64
	Target *float64
	High   *float64
}

// HasAny reports whether at least one spec field is present
func (s SpecLimits) HasAny() bool {
	return s.Low != nil || s.Target != nil || s.High != nil
}

// Point is a coordinate in (N, P) measurement space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PairedPoint joins the N and P measurement of one device code at one index label.
// Either side may be nil when only one channel reported that index.
type PairedPoint struct {
	Index IndexLabel `json:"index"`
	N     *float64   `json:"n"`
	P     *float64   `json:"p"`
}

// Complete reports whether both coordinates are present
func (p PairedPoint) Complete() bool { return p.N != nil && p.P != nil }

// DeviceGroup is the ordered paired sequence of one device code
type DeviceGroup struct {
	Code   string        `json:"code"`
	Points []PairedPoint `json:"points"`
}

// CompletePoints returns the points that have both coordinates, in order
func (g DeviceGroup) CompletePoints() []PairedPoint {
	out := make([]PairedPoint, 0, len(g.Points))
	for _, p := range g.Points {
		if p.Complete() {
			out = append(out, p)
		}
	}
	return out
}

// SpecBox is the rectangle spanned by the N and P spec limits of a device code.
// Width and Height are passed through unchecked and may be negative.
type SpecBox struct {
	Code   string  `json:"code"`
	Origin Point   `json:"origin"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Target *Point  `json:"target,omitempty"`
}

// PlotPoint is one renderable scatter point annotated with its device code
type PlotPoint struct {
	Code  string     `json:"code"`
	Index IndexLabel `json:"index"`
	X     float64    `json:"x"`
	Y     float64    `json:"y"`
}

// ItemSample is one (column index, value) measurement of a named test item
type ItemSample struct {
	Index IndexLabel
	Value float64
}

// CornerSample is one measurement taken at a supply voltage and process corner
type CornerSample struct {
	Voltage IndexLabel
	Corner  string
	Value   float64
}
