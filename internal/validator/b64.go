package validator

import (
	"encoding/base64"
)

// ensure the data length is less than the maximum base64 length for a given length without decoding the base64
func validateBase64Len(dataLen int, length int) bool {
	return dataLen <= base64.StdEncoding.EncodedLen(length)
}

// ensures an encoded attachment is no longer than the encoding of the maximum attachment size
func ValidateAttachmentSize(dataLen int, maxBytes int64) bool {
	return validateBase64Len(dataLen, int(maxBytes))
}
