package ninepay

import (
	"strings"

	"github.com/mstgnz/ninepay/provider"
)

const (
	correlationKeyPrefix = "NinePayService-"
	customFieldPrefix    = "user_"
	fieldType            = customFieldPrefix + "Type"
	fieldReturnURL       = customFieldPrefix + "returnUrl"
)

func correlationKey(requestCode string) string {
	return correlationKeyPrefix + requestCode
}

// encodeCorrelation flattens a record into user_ prefixed keys. The reserved
// type and return URL entries win over custom fields with the same name.
func encodeCorrelation(record provider.CorrelationRecord) map[string]string {
	flat := make(map[string]string, len(record.CustomFields)+2)
	for key, value := range record.CustomFields {
		flat[customFieldPrefix+key] = value
	}
	flat[fieldType] = record.TransactionType
	flat[fieldReturnURL] = record.ReturnURL
	return flat
}

func decodeCorrelation(flat map[string]string) provider.CorrelationRecord {
	record := provider.CorrelationRecord{
		TransactionType: flat[fieldType],
		ReturnURL:       flat[fieldReturnURL],
		CustomFields:    make(map[string]string),
	}

	for key, value := range flat {
		if key == fieldType || key == fieldReturnURL || !strings.HasPrefix(key, customFieldPrefix) {
			continue
		}
		record.CustomFields[strings.TrimPrefix(key, customFieldPrefix)] = value
	}

	return record
}
