package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	commonpb "go.temporal.io/api/common/v1"
	"go.temporal.io/sdk/converter"

	"fulfillment-engine/models"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptionCodecRoundTrip(t *testing.T) {
	codec, err := NewEncryptionCodec(testKey)
	require.NoError(t, err)

	payloads, err := converter.GetDefaultDataConverter().ToPayloads(models.ShipmentRequest{
		OrderID:        "ord-1",
		TrackingNumber: "1Z001",
		Carrier:        "ups",
	})
	require.NoError(t, err)

	encoded, err := codec.Encode(payloads.Payloads)
	require.NoError(t, err)
	require.Len(t, encoded, 1)
	assert.Equal(t, MetadataEncodingEncrypted, string(encoded[0].Metadata[converter.MetadataEncoding]))
	assert.NotContains(t, string(encoded[0].Data), "1Z001")

	decoded, err := codec.Decode(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, payloads.Payloads[0].Data, decoded[0].Data)
}

func TestEncryptionCodecPassthrough(t *testing.T) {
	codec, err := NewEncryptionCodec(testKey)
	require.NoError(t, err)

	plain := &commonpb.Payload{
		Metadata: map[string][]byte{converter.MetadataEncoding: []byte("json/plain")},
		Data:     []byte(`"hello"`),
	}

	decoded, err := codec.Decode([]*commonpb.Payload{plain})
	require.NoError(t, err)
	assert.Same(t, plain, decoded[0])
}

func TestEncryptionCodecRejectsTamperedPayload(t *testing.T) {
	codec, err := NewEncryptionCodec(testKey)
	require.NoError(t, err)

	payloads, err := converter.GetDefaultDataConverter().ToPayloads("secret")
	require.NoError(t, err)

	encoded, err := codec.Encode(payloads.Payloads)
	require.NoError(t, err)

	encoded[0].Data[len(encoded[0].Data)-1] ^= 0xff
	_, err = codec.Decode(encoded)
	require.Error(t, err)
}

func TestEncryptionCodecRejectsBadKey(t *testing.T) {
	_, err := NewEncryptionCodec([]byte("short"))
	require.Error(t, err)
}

func TestEncryptionDataConverter(t *testing.T) {
	dc, err := NewEncryptionDataConverter(testKey)
	require.NoError(t, err)

	request := models.ShipmentRequest{OrderID: "ord-1", TrackingNumber: "1Z001", Carrier: "ups"}
	payloads, err := dc.ToPayloads(request)
	require.NoError(t, err)
	assert.Equal(t, MetadataEncodingEncrypted, string(payloads.Payloads[0].Metadata[converter.MetadataEncoding]))

	var got models.ShipmentRequest
	require.NoError(t, dc.FromPayloads(payloads, &got))
	assert.Equal(t, request, got)
}
