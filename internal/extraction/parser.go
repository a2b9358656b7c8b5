// internal/extraction/parser.go
package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"transcript-workers/internal/models"
)

var ErrResponseUndecodable = errors.New("NLU_RESPONSE_UNDECODABLE")

// EntityNames maps the NLU service's entity type names onto semantic slots.
type EntityNames struct {
	DateTime string
	Date     string
	Time     string
	Person   string
	Location string
	City     string
	State    string
	Zipcode  string
}

func DefaultEntityNames() EntityNames {
	return EntityNames{
		DateTime: "builtin.datetimeV2.datetime",
		Date:     "builtin.datetimeV2.date",
		Time:     "builtin.datetimeV2.time",
		Person:   "Person",
		Location: "Location",
		City:     "City",
		State:    "State",
		Zipcode:  "Zipcode",
	}
}

// ParsedResponse is the typed view of one NLU response.
type ParsedResponse struct {
	Intent     *string
	Temporal   []models.RawEntityMention
	Person     *models.PersonInfo
	Location   *models.LocationInfo
	Additional []models.RawEntityMention
}

// DecodeResponse decodes a raw NLU payload. Only structurally invalid
// payloads fail; missing collections decode as empty.
func DecodeResponse(data []byte) (*models.NLUResponse, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: empty payload", ErrResponseUndecodable)
	}

	var resp models.NLUResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseUndecodable, err)
	}
	return &resp, nil
}

// Classify dispatches one entity record to its mention variant.
func Classify(record models.EntityRecord, names EntityNames) models.Mention {
	raw := models.RawEntityMention{
		Type:          record.Type,
		Text:          record.Entity,
		StartIndex:    record.StartIndex,
		EndIndex:      record.EndIndex,
		ResolvedValue: resolvedValue(record.Resolution),
		Role:          record.Role,
	}

	switch {
	case matches(record.Type, names.DateTime, names.Date, names.Time):
		return models.DateTimeMention{RawEntityMention: raw}
	case matches(record.Type, names.Person):
		return models.PersonMention{RawEntityMention: raw}
	case matches(record.Type, names.Location):
		return models.LocationMention{RawEntityMention: raw, Slot: models.SlotLocation}
	case matches(record.Type, names.City):
		return models.LocationMention{RawEntityMention: raw, Slot: models.SlotCity}
	case matches(record.Type, names.State):
		return models.LocationMention{RawEntityMention: raw, Slot: models.SlotState}
	case matches(record.Type, names.Zipcode):
		return models.LocationMention{RawEntityMention: raw, Slot: models.SlotZipcode}
	default:
		return models.AdditionalMention{RawEntityMention: raw}
	}
}

// ParseResponse turns the intent and entity graph into typed mentions.
// Temporal and additional mentions are ordered by their position in the query.
func ParseResponse(resp *models.NLUResponse, names EntityNames) *ParsedResponse {
	parsed := &ParsedResponse{
		Temporal:   []models.RawEntityMention{},
		Additional: []models.RawEntityMention{},
	}
	if resp == nil {
		return parsed
	}

	if resp.TopScoringIntent != nil {
		if intent := strings.TrimSpace(resp.TopScoringIntent.Intent); intent != "" {
			parsed.Intent = &intent
		}
	}

	var location locationGroup

	records := make([]models.EntityRecord, len(resp.Entities))
	copy(records, resp.Entities)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartIndex < records[j].StartIndex
	})

	for _, record := range records {
		switch m := Classify(record, names).(type) {
		case models.DateTimeMention:
			parsed.Temporal = append(parsed.Temporal, m.RawEntityMention)
		case models.PersonMention:
			if parsed.Person == nil {
				parsed.Person = personFrom(m)
			}
		case models.LocationMention:
			location.attach(m.Slot, m.Text)
		case models.AdditionalMention:
			parsed.Additional = append(parsed.Additional, m.RawEntityMention)
		}
	}

	for _, composite := range resp.CompositeEntities {
		if !matches(composite.ParentType, names.Location) {
			continue
		}
		location.attach(models.SlotLocation, composite.Value)
		for _, child := range composite.Children {
			switch {
			case matches(child.Type, names.City):
				location.attach(models.SlotCity, child.Value)
			case matches(child.Type, names.State):
				location.attach(models.SlotState, child.Value)
			case matches(child.Type, names.Zipcode):
				location.attach(models.SlotZipcode, child.Value)
			}
		}
	}

	parsed.Location = location.info
	return parsed
}

func personFrom(m models.PersonMention) *models.PersonInfo {
	role := strings.TrimSpace(m.Role)
	if role == "" {
		role = models.UnknownPersonType
	}
	return &models.PersonInfo{Name: m.Text, Type: role}
}

// locationGroup collects location slots; the first value per slot wins. The
// raw text falls back to the first sub-entity until a location value is seen.
// A second, different location value closes the group: sub-entities after it
// belong to that other location and are ignored until the first location is
// named again.
type locationGroup struct {
	info        *models.LocationInfo
	rawExplicit bool
	closed      bool
}

func (g *locationGroup) attach(slot models.LocationSlot, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if g.info == nil {
		g.info = &models.LocationInfo{}
	}

	if slot == models.SlotLocation {
		switch {
		case !g.rawExplicit:
			g.info.RawText = text
			g.rawExplicit = true
		default:
			g.closed = !strings.EqualFold(text, g.info.RawText)
		}
		return
	}
	if g.closed {
		return
	}

	switch slot {
	case models.SlotCity:
		if g.info.City == nil {
			g.info.City = &text
		}
	case models.SlotState:
		if g.info.State == nil {
			g.info.State = &text
		}
	case models.SlotZipcode:
		if g.info.Zipcode == nil {
			g.info.Zipcode = &text
		}
	}

	if g.info.RawText == "" {
		g.info.RawText = text
	}
}

// resolvedValue picks the value used for normalization. Ambiguous date/time
// resolutions list past before future candidates, so the last one is taken.
func resolvedValue(res *models.Resolution) string {
	if res == nil {
		return ""
	}
	if n := len(res.Values); n > 0 {
		v := res.Values[n-1]
		if v.Value != "" {
			return v.Value
		}
		return v.Start
	}
	return res.Value
}

func matches(entityType string, names ...string) bool {
	for _, name := range names {
		if name != "" && strings.EqualFold(entityType, name) {
			return true
		}
	}
	return false
}
