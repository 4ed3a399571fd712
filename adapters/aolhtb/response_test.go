package aolhtb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBidNoBid(t *testing.T) {
	testCases := []struct {
		description string
		payload     string
	}{
		{"nil payload", ""},
		{"not json", "<html>"},
		{"no seatbid", `{"id":"1"}`},
		{"empty seatbid", `{"seatbid":[]}`},
		{"empty bid list", `{"seatbid":[{"bid":[]}]}`},
		{"bid is not an object", `{"seatbid":[{"bid":["x"]}]}`},
		{"nbr marker", `{"seatbid":[{"bid":[{"nbr":2,"price":1.5,"adm":"<div/>"}]}]}`},
		{"nbr marker set to zero", `{"seatbid":[{"bid":[{"nbr":0,"price":1.5,"adm":"<div/>"}]}]}`},
		{"missing price", `{"seatbid":[{"bid":[{"adm":"<div/>"}]}]}`},
		{"string price", `{"seatbid":[{"bid":[{"price":"1.5","adm":"<div/>"}]}]}`},
		{"zero price", `{"seatbid":[{"bid":[{"price":0,"adm":"<div/>"}]}]}`},
		{"missing adm", `{"seatbid":[{"bid":[{"price":1.5}]}]}`},
		{"empty adm", `{"seatbid":[{"bid":[{"price":1.5,"adm":""}]}]}`},
	}

	for _, test := range testCases {
		result := ParseBid([]byte(test.payload))
		assert.True(t, result.IsNoBid(), test.description)
		assert.Nil(t, result.Bid, test.description)
		require.NotNil(t, result.NoBid, test.description)
		assert.NotEmpty(t, result.NoBid.Reason, test.description)
	}
}

func TestParseBidWellFormed(t *testing.T) {
	payload := `{"id":"x","seatbid":[{"bid":[{"id":"b1","price":1.2345,"adm":"<script src=\"//a.b/c\"></script>",` +
		`"w":300,"h":"250","dealid":"deal-9","ext":{"pixels":"<img src=\"//p\">"}},{"price":99,"adm":"second"}]}]}`

	result := ParseBid([]byte(payload))
	require.False(t, result.IsNoBid())

	bid := result.Bid
	assert.Equal(t, 1.2345, bid.Price, "raw price is kept")
	assert.Equal(t, `<script src="//a.b/c"></script>`, bid.Creative)
	assert.Equal(t, [2]int{300, 250}, bid.Size)
	require.NotNil(t, bid.DealID)
	assert.Equal(t, "deal-9", *bid.DealID)
	assert.Equal(t, `<img src="//p">`, bid.TrackingPixel)
}

func TestParseBidOptionalFields(t *testing.T) {
	result := ParseBid([]byte(`{"seatbid":[{"bid":[{"price":3,"adm":"<div/>","w":"728.0"}]}]}`))
	require.False(t, result.IsNoBid())

	assert.Equal(t, [2]int{728, 0}, result.Bid.Size)
	assert.Nil(t, result.Bid.DealID)
	assert.Empty(t, result.Bid.TrackingPixel)
}

func TestParseBidSizeCoercion(t *testing.T) {
	testCases := []struct {
		description string
		w, h        string
		expected    [2]int
	}{
		{"numbers", `320`, `50`, [2]int{320, 50}},
		{"numeric strings", `"320"`, `"50"`, [2]int{320, 50}},
		{"non numeric string", `"wide"`, `50`, [2]int{0, 50}},
		{"null", `null`, `true`, [2]int{0, 0}},
	}

	for _, test := range testCases {
		result := ParseBid([]byte(`{"seatbid":[{"bid":[{"price":1,"adm":"a","w":` + test.w + `,"h":` + test.h + `}]}]}`))
		require.False(t, result.IsNoBid(), test.description)
		assert.Equal(t, test.expected, result.Bid.Size, test.description)
	}
}

func TestParseBidUnescapesDealID(t *testing.T) {
	result := ParseBid([]byte(`{"seatbid":[{"bid":[{"price":1,"adm":"a","dealid":"a\"b\u00e9"}]}]}`))
	require.False(t, result.IsNoBid())
	require.NotNil(t, result.Bid.DealID)
	assert.Equal(t, `a"bé`, *result.Bid.DealID)
}

func TestParseBidNumericDealID(t *testing.T) {
	result := ParseBid([]byte(`{"seatbid":[{"bid":[{"price":1,"adm":"a","dealid":123}]}]}`))
	require.False(t, result.IsNoBid())
	require.NotNil(t, result.Bid.DealID)
	assert.Equal(t, "123", *result.Bid.DealID)
}
