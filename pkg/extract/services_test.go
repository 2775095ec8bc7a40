package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractServicesFromSynonyms(t *testing.T) {
	n := testNormalizer()

	services := n.extractServices("Cloudian cluster rebalance ongoing", nil)
	assert.Equal(t, []string{"s3 object storage"}, services)

	services = n.extractServices("issue with e-mail delivery via postfix", nil)
	assert.Equal(t, []string{"mail"}, services)
}

func TestExtractServicesFromBracketTags(t *testing.T) {
	n := testNormalizer()

	services := n.extractServices("[NGCS] provisioning stuck", nil)
	assert.Contains(t, services, "cloud server")

	// ignored tags and invalid tags contribute nothing
	assert.Empty(t, n.extractServices("[URGENT] [~jdoe] [22/07/2025] [123] fix it", nil))
}

func TestExtractServicesFromBusinessUnits(t *testing.T) {
	n := testNormalizer()

	services := n.extractServices("", []string{
		"AR_Cloud Builder",
		"IC-S3 Object Storage",
		"IONOS Cloud/IONOS Cloud PSS/IC-Block Storage",
	})
	assert.Equal(t, []string{"block storage", "cloud builder", "s3 object storage"}, services)
}

func TestParseBusinessUnit(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AR_Cloud Builder", "cloud builder"},
		{"FH_Control Panel", "control panel"},
		{"IC-S3 Object Storage", "s3 object storage"},
		{"IONOS-NGCS", "ngcs"},
		{"Strato-Mail", "mail"},
		{"home.pl-Webmail", "webmail"},
		{"fasthosts-Email", "email"},
		{"Next Generation Cloud Server (NGCS)", "ngcs"},
		{"IONOS Cloud/IONOS Cloud PSS/IC-S3 Object Storage", "s3 object storage"},
		{"Arsys Business Support Systems", "arsys"},
		{"Sedo", "sedo"},
		{"Dave", "dave"},
		{"", ""},
		{"x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseBusinessUnit(tt.input))
		})
	}
}

func TestValidServiceTag(t *testing.T) {
	n := testNormalizer()

	valid := []string{"NGCS", "S3 Object Storage", "control panel"}
	for _, tag := range valid {
		assert.True(t, n.validServiceTag(tag), tag)
	}

	invalid := []string{
		"~jdoe",             // user mention
		"22/07/2025 change", // date-shaped
		"http://example",    // url
		"see example.com",   // url-bearing
		"!image.png!",       // image macro
		"x",                 // too short
		"12345",             // digits only
	}
	for _, tag := range invalid {
		assert.False(t, n.validServiceTag(tag), tag)
	}
}
