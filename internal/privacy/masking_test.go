package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPhoneNumber(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		expected string
	}{
		{name: "international number", phone: "+6281234567890", expected: "+*********7890"},
		{name: "plain number", phone: "6281234567890", expected: "*********7890"},
		{name: "short number", phone: "123", expected: "***"},
		{name: "empty", phone: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskPhoneNumber(tt.phone))
		})
	}
}

func TestMaskMessageID(t *testing.T) {
	assert.Equal(t, "**********IjM5NDcz", MaskMessageID("wamid.HBgLIjM5NDcz"))
	assert.Equal(t, "*****", MaskMessageID("short"))
	assert.Equal(t, "", MaskMessageID(""))
}

func TestMaskSensitiveFields(t *testing.T) {
	masked := MaskSensitiveFields(map[string]interface{}{
		"from":        "+6281234567890",
		"message_id":  "wamid.HBgLIjM5NDcz",
		"status_code": 200,
	})

	assert.Equal(t, "+*********7890", masked["from"])
	assert.Equal(t, "**********IjM5NDcz", masked["message_id"])
	assert.Equal(t, 200, masked["status_code"])
	assert.Nil(t, MaskSensitiveFields(nil))
}
