package model

import (
	"encoding/json"
	"fmt"
)

// Value is the data value of a snak. The set of implementations is closed and
// every implementation is comparable, so values compare with ==.
type Value interface {
	ValueType() string
	isValue()
}

type StringValue struct {
	Value string
}

type EntityIDValue struct {
	ID EntityID
}

type MonolingualTextValue struct {
	Text     string
	Language string
}

type QuantityValue struct {
	Amount     string
	LowerBound string
	UpperBound string
	Unit       string
}

type TimeValue struct {
	Time          string
	Timezone      int
	Before        int
	After         int
	Precision     int
	CalendarModel string
}

type GlobeCoordinatesValue struct {
	Latitude  float64
	Longitude float64
	Precision float64
	Globe     string
}

func (StringValue) ValueType() string           { return "string" }
func (EntityIDValue) ValueType() string         { return "wikibase-entityid" }
func (MonolingualTextValue) ValueType() string  { return "monolingualtext" }
func (QuantityValue) ValueType() string         { return "quantity" }
func (TimeValue) ValueType() string             { return "time" }
func (GlobeCoordinatesValue) ValueType() string { return "globecoordinate" }

func (StringValue) isValue()           {}
func (EntityIDValue) isValue()         {}
func (MonolingualTextValue) isValue()  {}
func (QuantityValue) isValue()         {}
func (TimeValue) isValue()             {}
func (GlobeCoordinatesValue) isValue() {}

type dataValueJSON struct {
	Value json.RawMessage `json:"value"`
	Type  string          `json:"type"`
}

type entityIDValueJSON struct {
	EntityType Kind   `json:"entity-type"`
	ID         string `json:"id"`
}

type monolingualTextJSON struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type quantityJSON struct {
	Amount     string `json:"amount"`
	UpperBound string `json:"upperBound,omitempty"`
	LowerBound string `json:"lowerBound,omitempty"`
	Unit       string `json:"unit"`
}

type timeJSON struct {
	Time          string `json:"time"`
	Timezone      int    `json:"timezone"`
	Before        int    `json:"before"`
	After         int    `json:"after"`
	Precision     int    `json:"precision"`
	CalendarModel string `json:"calendarmodel"`
}

type globeCoordinatesJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Precision float64 `json:"precision"`
	Globe     string  `json:"globe"`
}

func marshalValue(v Value) (dataValueJSON, error) {
	var inner any
	switch v := v.(type) {
	case StringValue:
		inner = v.Value
	case EntityIDValue:
		inner = entityIDValueJSON{EntityType: v.ID.Kind(), ID: v.ID.ID()}
	case MonolingualTextValue:
		inner = monolingualTextJSON(v)
	case QuantityValue:
		inner = quantityJSON{Amount: v.Amount, UpperBound: v.UpperBound, LowerBound: v.LowerBound, Unit: v.Unit}
	case TimeValue:
		inner = timeJSON(v)
	case GlobeCoordinatesValue:
		inner = globeCoordinatesJSON(v)
	default:
		return dataValueJSON{}, fmt.Errorf("unsupported value type %T", v)
	}
	raw, err := json.Marshal(inner)
	if err != nil {
		return dataValueJSON{}, err
	}
	return dataValueJSON{Value: raw, Type: v.ValueType()}, nil
}

func unmarshalValue(dv dataValueJSON, siteIRI string) (Value, error) {
	switch dv.Type {
	case "string":
		var s string
		err := json.Unmarshal(dv.Value, &s)
		return StringValue{Value: s}, err
	case "wikibase-entityid":
		var e entityIDValueJSON
		if err := json.Unmarshal(dv.Value, &e); err != nil {
			return nil, err
		}
		id, err := NewEntityID(e.EntityType, e.ID, siteIRI)
		if err != nil {
			return nil, err
		}
		return EntityIDValue{ID: id}, nil
	case "monolingualtext":
		var m monolingualTextJSON
		err := json.Unmarshal(dv.Value, &m)
		return MonolingualTextValue(m), err
	case "quantity":
		var q quantityJSON
		err := json.Unmarshal(dv.Value, &q)
		return QuantityValue{Amount: q.Amount, LowerBound: q.LowerBound, UpperBound: q.UpperBound, Unit: q.Unit}, err
	case "time":
		var t timeJSON
		err := json.Unmarshal(dv.Value, &t)
		return TimeValue(t), err
	case "globecoordinate":
		var g globeCoordinatesJSON
		err := json.Unmarshal(dv.Value, &g)
		return GlobeCoordinatesValue(g), err
	}
	return nil, fmt.Errorf("unsupported value type %q", dv.Type)
}
