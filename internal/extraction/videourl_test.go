package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestResolveVideoURLTakesLastProgressive(t *testing.T) {
	node := gjson.Parse(`{
		"browser_native_hd_url":"https://v/hd.mp4",
		"videoDeliveryResponseFragment":{"videoDeliveryResponseResult":{"progressive_urls":[
			{"progressive_url":"https://v/360.mp4"},
			{"progressive_url":"https://v/720.mp4"},
			{"progressive_url":null}
		]}}
	}`)
	u, ok := resolveVideoURL(node)
	assert.True(t, ok)
	assert.Equal(t, "https://v/720.mp4", u)
}

func TestResolveVideoURLTiers(t *testing.T) {
	cases := []struct {
		name string
		json string
		want string
	}{
		{"hd", `{"browser_native_hd_url":"https://v/hd.mp4","browser_native_sd_url":"https://v/sd.mp4"}`, "https://v/hd.mp4"},
		{"playable hd", `{"playable_url":"https://v/sd.mp4","playable_url_quality_hd":"https://v/phd.mp4"}`, "https://v/phd.mp4"},
		{"sd", `{"browser_native_hd_url":null,"browser_native_sd_url":"https://v/sd.mp4"}`, "https://v/sd.mp4"},
		{"legacy", `{"videoDeliveryLegacyFields":{"browser_native_hd_url":null,"browser_native_sd_url":"https://v/legacy.mp4"}}`, "https://v/legacy.mp4"},
		{"escaped", `{"playable_url":"https:\\/\\/v\\/sd.mp4"}`, "https://v/sd.mp4"},
		{"empty progressive", `{"videoDeliveryResponseFragment":{"videoDeliveryResponseResult":{"progressive_urls":[{"progressive_url":null}]}},"playable_url":"https://v/p.mp4"}`, "https://v/p.mp4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, ok := resolveVideoURL(gjson.Parse(tc.json))
			assert.True(t, ok)
			assert.Equal(t, tc.want, u)
		})
	}
}

func TestResolveVideoURLPrefersQualityAcrossNodes(t *testing.T) {
	sd := gjson.Parse(`{"browser_native_sd_url":"https://v/sd.mp4"}`)
	hd := gjson.Parse(`{"browser_native_hd_url":"https://v/hd.mp4"}`)
	u, ok := resolveVideoURL(sd, hd)
	assert.True(t, ok)
	assert.Equal(t, "https://v/hd.mp4", u)
}

func TestResolveVideoURLExhausted(t *testing.T) {
	_, ok := resolveVideoURL(gjson.Parse(`{"browser_native_hd_url":null,"videoDeliveryLegacyFields":{}}`), gjson.Result{})
	assert.False(t, ok)
}
