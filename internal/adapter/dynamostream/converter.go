package dynamostream

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/leadvet/prospectval/internal/model"
)

// ConvertToValidationRecord converts a DynamoDB stream NewImage map to a
// ValidationRecord. The attribute layout matches the dynamorepo DTO: pk is
// the domain, sk is the check time rendered by model.TimeKey.
func ConvertToValidationRecord(newImage map[string]events.DynamoDBAttributeValue) (*model.ValidationRecord, error) {
	if newImage == nil {
		return nil, fmt.Errorf("newImage is nil")
	}

	rec := &model.ValidationRecord{}

	// Domain comes from pk
	rec.Domain = ExtractStringAttribute(newImage, "pk")
	if rec.Domain == "" {
		return nil, fmt.Errorf("missing required field: Domain (pk)")
	}

	// CheckedAt comes from sk, the sortable time key
	sk := ExtractStringAttribute(newImage, "sk")
	if sk == "" {
		return nil, fmt.Errorf("missing required field: CheckedAt (sk)")
	}
	checkedAt, err := model.ParseTimeKey(sk)
	if err != nil {
		return nil, fmt.Errorf("invalid sk time key: %w", err)
	}
	rec.CheckedAt = checkedAt

	// OverallScore - required
	score, ok := extractIntAttribute(newImage, "OverallScore")
	if !ok {
		return nil, fmt.Errorf("missing required field: OverallScore")
	}
	rec.OverallScore = score

	// OverallPassed - required
	passed, ok := extractBoolAttribute(newImage, "OverallPassed")
	if !ok {
		return nil, fmt.Errorf("missing required field: OverallPassed")
	}
	rec.OverallPassed = passed

	// The remaining fields degrade to empty when absent so that partial
	// images still produce a usable summary.
	rec.URL = ExtractStringAttribute(newImage, "URL")
	rec.CheckScores = extractIntMapAttribute(newImage, "CheckScores")
	rec.CheckPassed = extractBoolMapAttribute(newImage, "CheckPassed")
	rec.Issues = extractStringListAttribute(newImage, "Issues")

	if result, ok := newImage["Result"]; ok && result.DataType() == events.DataTypeMap {
		rec.Result = attributeMapToAny(result.Map())
	}

	return rec, nil
}

// ExtractStringAttribute extracts a string value from a DynamoDB attribute map
func ExtractStringAttribute(attrs map[string]events.DynamoDBAttributeValue, key string) string {
	if attr, ok := attrs[key]; ok {
		if attr.DataType() == events.DataTypeString {
			return attr.String()
		}
	}
	return ""
}

func extractIntAttribute(attrs map[string]events.DynamoDBAttributeValue, key string) (int, bool) {
	attr, ok := attrs[key]
	if !ok || attr.DataType() != events.DataTypeNumber {
		return 0, false
	}
	n, err := attr.Integer()
	if err != nil {
		return 0, false
	}
	return int(n), true
}

func extractBoolAttribute(attrs map[string]events.DynamoDBAttributeValue, key string) (bool, bool) {
	attr, ok := attrs[key]
	if !ok || attr.DataType() != events.DataTypeBoolean {
		return false, false
	}
	return attr.Boolean(), true
}

func extractIntMapAttribute(attrs map[string]events.DynamoDBAttributeValue, key string) map[string]int {
	attr, ok := attrs[key]
	if !ok || attr.DataType() != events.DataTypeMap {
		return nil
	}
	out := make(map[string]int)
	for name, value := range attr.Map() {
		if value.DataType() != events.DataTypeNumber {
			continue
		}
		if n, err := value.Integer(); err == nil {
			out[name] = int(n)
		}
	}
	return out
}

func extractBoolMapAttribute(attrs map[string]events.DynamoDBAttributeValue, key string) map[string]bool {
	attr, ok := attrs[key]
	if !ok || attr.DataType() != events.DataTypeMap {
		return nil
	}
	out := make(map[string]bool)
	for name, value := range attr.Map() {
		if value.DataType() == events.DataTypeBoolean {
			out[name] = value.Boolean()
		}
	}
	return out
}

func extractStringListAttribute(attrs map[string]events.DynamoDBAttributeValue, key string) []string {
	attr, ok := attrs[key]
	if !ok || attr.DataType() != events.DataTypeList {
		return nil
	}
	list := attr.List()
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item.DataType() == events.DataTypeString {
			out = append(out, item.String())
		}
	}
	return out
}

// attributeToAny converts an arbitrary attribute to its plain Go form, so
// the nested flat-result map survives the trip through the stream intact.
func attributeToAny(attr events.DynamoDBAttributeValue) any {
	switch attr.DataType() {
	case events.DataTypeString:
		return attr.String()
	case events.DataTypeNumber:
		s := attr.Number()
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return s
	case events.DataTypeBoolean:
		return attr.Boolean()
	case events.DataTypeNull:
		return nil
	case events.DataTypeMap:
		return attributeMapToAny(attr.Map())
	case events.DataTypeList:
		list := attr.List()
		out := make([]any, 0, len(list))
		for _, item := range list {
			out = append(out, attributeToAny(item))
		}
		return out
	default:
		return nil
	}
}

func attributeMapToAny(attrs map[string]events.DynamoDBAttributeValue) map[string]any {
	out := make(map[string]any, len(attrs))
	for name, value := range attrs {
		out[name] = attributeToAny(value)
	}
	return out
}
