// Package codec encrypts Temporal payloads with AES-GCM so shipment and
// order data never reach the Temporal cluster in cleartext.
package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	commonpb "go.temporal.io/api/common/v1"
	"go.temporal.io/sdk/converter"
)

// MetadataEncodingEncrypted marks payloads encrypted by this codec.
const MetadataEncodingEncrypted = "binary/encrypted"

// EncryptionCodec is a PayloadCodec that seals whole payloads with AES-GCM.
type EncryptionCodec struct {
	aead cipher.AEAD
}

// NewEncryptionCodec creates a codec from a 16, 24 or 32 byte AES key.
func NewEncryptionCodec(key []byte) (*EncryptionCodec, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &EncryptionCodec{aead: aead}, nil
}

// Encode encrypts each payload wholesale and replaces it with an encrypted
// envelope payload.
func (c *EncryptionCodec) Encode(payloads []*commonpb.Payload) ([]*commonpb.Payload, error) {
	result := make([]*commonpb.Payload, len(payloads))
	for i, p := range payloads {
		plain, err := p.Marshal()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		nonce := make([]byte, c.aead.NonceSize())
		if _, err := rand.Read(nonce); err != nil {
			return nil, fmt.Errorf("failed to generate nonce: %w", err)
		}
		result[i] = &commonpb.Payload{
			Metadata: map[string][]byte{
				converter.MetadataEncoding: []byte(MetadataEncodingEncrypted),
			},
			Data: c.aead.Seal(nonce, nonce, plain, nil),
		}
	}
	return result, nil
}

// Decode decrypts payloads produced by Encode. Payloads with any other
// encoding pass through untouched.
func (c *EncryptionCodec) Decode(payloads []*commonpb.Payload) ([]*commonpb.Payload, error) {
	result := make([]*commonpb.Payload, len(payloads))
	for i, p := range payloads {
		if string(p.Metadata[converter.MetadataEncoding]) != MetadataEncodingEncrypted {
			result[i] = p
			continue
		}
		nonceSize := c.aead.NonceSize()
		if len(p.Data) < nonceSize {
			return nil, fmt.Errorf("encrypted payload shorter than nonce")
		}
		plain, err := c.aead.Open(nil, p.Data[:nonceSize], p.Data[nonceSize:], nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt payload: %w", err)
		}
		decoded := &commonpb.Payload{}
		if err := decoded.Unmarshal(plain); err != nil {
			return nil, fmt.Errorf("failed to unmarshal decrypted payload: %w", err)
		}
		result[i] = decoded
	}
	return result, nil
}

// NewEncryptionDataConverter wraps the default data converter with payload
// encryption.
func NewEncryptionDataConverter(key []byte) (converter.DataConverter, error) {
	codec, err := NewEncryptionCodec(key)
	if err != nil {
		return nil, err
	}
	return converter.NewCodecDataConverter(converter.GetDefaultDataConverter(), codec), nil
}
