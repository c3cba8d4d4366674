package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-04")
	if assert.NoError(t, err) {
		assert.Equal(t, NewDate(2024, time.March, 4), d)
		assert.Equal(t, "2024-03-04", d.String())
	}

	for _, bad := range []string{"", "04/03/2024", "2024-13-01", "lol"} {
		_, err = ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestDateOf(t *testing.T) {
	tashkent := time.FixedZone("UZT", 5*60*60)
	d := DateOf(time.Date(2024, time.March, 4, 23, 30, 0, 0, tashkent))
	assert.Equal(t, "2024-03-04", d.String())
	assert.True(t, d.Equal(NewDate(2024, time.March, 4)))
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
	}

	b, err := json.Marshal(payload{Date: NewDate(2024, time.March, 4)})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"date": "2024-03-04"}`, string(b))

	b, err = json.Marshal(payload{})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"date": null}`, string(b))

	tests := []struct {
		name    string
		data    string
		want    string
		wantErr bool
	}{
		{name: "date", data: `{"date": "2024-03-04"}`, want: "2024-03-04"},
		{name: "null", data: `{"date": null}`},
		{name: "empty", data: `{"date": ""}`},
		{name: "missing", data: `{}`},
		{name: "bad format", data: `{"date": "04/03/2024"}`, wantErr: true},
		{name: "not a string", data: `{"date": 20240304}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := json.Unmarshal([]byte(tt.data), &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, p.Date.String())
		})
	}
}

func TestDate_UnmarshalParam(t *testing.T) {
	var d Date
	assert.NoError(t, d.UnmarshalParam("2024-03-04"))
	assert.Equal(t, "2024-03-04", d.String())

	assert.NoError(t, d.UnmarshalParam(""))
	assert.True(t, d.IsZero())

	assert.Error(t, d.UnmarshalParam("yesterday"))
}
