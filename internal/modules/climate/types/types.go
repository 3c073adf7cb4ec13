package types

import (
	"bytes"
	"encoding/json"
)

// Station is a row of the station relation.
type Station struct {
	ID      int64  `json:"id"`
	Station string `json:"station"`
	Name    string `json:"name"`
}

// Measurement is a row of the measurement relation. Date is YYYY-MM-DD, so
// string ordering is chronological.
type Measurement struct {
	Station string   `json:"station"`
	Date    string   `json:"date"`
	Prcp    *float64 `json:"prcp"`
	Tobs    float64  `json:"tobs"`
}

// DateValue is one observation keyed by its date. It encodes as a
// single-key object: {"2016-08-24": 0.08}. A nil Value encodes as null.
type DateValue struct {
	Date  string
	Value *float64
}

func (d DateValue) MarshalJSON() ([]byte, error) {
	key, err := json.Marshal(d.Date)
	if err != nil {
		return nil, err
	}
	val := []byte("null")
	if d.Value != nil {
		val, err = json.Marshal(*d.Value)
		if err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	buf.Grow(len(key) + len(val) + 3)
	buf.WriteByte('{')
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(val)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TempStats is the aggregate over tobs for a date range. Fields are filled
// positionally from MIN, MAX, AVG: TAvg carries the maximum and TMax the
// average. Clients already depend on this ordering.
type TempStats struct {
	TMin float64 `json:"TMIN"`
	TAvg float64 `json:"TAVG"`
	TMax float64 `json:"TMAX"`
}
