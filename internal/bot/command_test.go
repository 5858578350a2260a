package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text    string
		kind    Kind
		payload string
	}{
		{"/start", KindStart, ""},
		{"/help", KindHelp, ""},
		{"help", KindHelp, ""},
		{"/report", KindReportHazard, ""},
		{"Report hazard", KindReportHazard, ""},
		{"/allclear", KindCloseEvent, ""},
		{"All clear", KindCloseEvent, ""},
		{"  /ALLCLEAR  ", KindCloseEvent, ""},
		{"/describe smoke on the third floor", KindDescribe, "smoke on the third floor"},
		{"/describe", KindDescribe, ""},
		{"what is going on", KindUnrecognized, "what is going on"},
		{"", KindUnrecognized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd := Parse(tt.text)
			assert.Equal(t, tt.kind, cmd.Kind)
			assert.Equal(t, tt.payload, cmd.Payload)
		})
	}
}
