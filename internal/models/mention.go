// internal/models/mention.go
package models

// RawEntityMention is one entity as reported by the NLU service.
// StartIndex/EndIndex are only used to keep relative ordering.
type RawEntityMention struct {
	Type          string `json:"type"`
	Text          string `json:"text"`
	StartIndex    int    `json:"startIndex"`
	EndIndex      int    `json:"endIndex"`
	ResolvedValue string `json:"resolvedValue"`
	Role          string `json:"role,omitempty"`
}

type MentionKind int

const (
	MentionDateTime MentionKind = iota
	MentionPerson
	MentionLocation
	MentionAdditional
)

func (k MentionKind) String() string {
	switch k {
	case MentionDateTime:
		return "datetime"
	case MentionPerson:
		return "person"
	case MentionLocation:
		return "location"
	default:
		return "additional"
	}
}

// Mention is the closed set of entity variants produced by classification.
type Mention interface {
	Kind() MentionKind
	Raw() RawEntityMention
}

type DateTimeMention struct{ RawEntityMention }

type PersonMention struct{ RawEntityMention }

// LocationSlot names the part of a location group a mention fills.
type LocationSlot int

const (
	SlotLocation LocationSlot = iota
	SlotCity
	SlotState
	SlotZipcode
)

type LocationMention struct {
	RawEntityMention
	Slot LocationSlot
}

type AdditionalMention struct{ RawEntityMention }

func (m DateTimeMention) Kind() MentionKind   { return MentionDateTime }
func (m PersonMention) Kind() MentionKind     { return MentionPerson }
func (m LocationMention) Kind() MentionKind   { return MentionLocation }
func (m AdditionalMention) Kind() MentionKind { return MentionAdditional }

func (m DateTimeMention) Raw() RawEntityMention   { return m.RawEntityMention }
func (m PersonMention) Raw() RawEntityMention     { return m.RawEntityMention }
func (m LocationMention) Raw() RawEntityMention   { return m.RawEntityMention }
func (m AdditionalMention) Raw() RawEntityMention { return m.RawEntityMention }

// FragmentKind is the resolution kind of a date/time mention.
type FragmentKind int

const (
	FragmentComplete FragmentKind = iota
	FragmentDateOnly
	FragmentTimeOnly
)

func (k FragmentKind) String() string {
	switch k {
	case FragmentDateOnly:
		return "DateOnly"
	case FragmentTimeOnly:
		return "TimeOnly"
	default:
		return "Complete"
	}
}

// TemporalFragment is a classified date/time mention. Fields not covered by
// Kind are zero. Usable is false when the resolved value could not be read.
type TemporalFragment struct {
	Kind   FragmentKind
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Order  int
	Usable bool
}
