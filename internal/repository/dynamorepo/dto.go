package dynamorepo

import (
	"time"

	"github.com/leadvet/prospectval/internal/model"
)

// DynamoDTO represents the persistence layer DTO for DynamoDB.
// It maps the validation record to DynamoDB's key structure where:
// - PK (partition key) is the domain
// - SK (sort key) is the check time rendered by model.TimeKey, so a
//   domain's history queries back in time order
type DynamoDTO struct {
	PK            string          `dynamodbav:"pk"` // Partition Key - maps from Domain
	SK            string          `dynamodbav:"sk"` // Sort Key - maps from CheckedAt
	URL           string          `dynamodbav:"URL"`
	CheckedAt     time.Time       `dynamodbav:"CheckedAt"`
	OverallScore  int             `dynamodbav:"OverallScore"`
	OverallPassed bool            `dynamodbav:"OverallPassed"`
	CheckScores   map[string]int  `dynamodbav:"CheckScores"`
	CheckPassed   map[string]bool `dynamodbav:"CheckPassed"`
	Issues        []string        `dynamodbav:"Issues"`
	Result        map[string]any  `dynamodbav:"Result"`
}

// ToDomain converts a DynamoDTO to a model ValidationRecord
func (dto *DynamoDTO) ToDomain() *model.ValidationRecord {
	return &model.ValidationRecord{
		URL:           dto.URL,
		Domain:        dto.PK,
		CheckedAt:     dto.CheckedAt,
		OverallScore:  dto.OverallScore,
		OverallPassed: dto.OverallPassed,
		CheckScores:   dto.CheckScores,
		CheckPassed:   dto.CheckPassed,
		Issues:        dto.Issues,
		Result:        dto.Result,
	}
}

// FromDomain creates a DynamoDTO from a model ValidationRecord
func FromDomain(rec *model.ValidationRecord) *DynamoDTO {
	return &DynamoDTO{
		PK:            rec.Domain,
		SK:            model.TimeKey(rec.CheckedAt),
		URL:           rec.URL,
		CheckedAt:     rec.CheckedAt,
		OverallScore:  rec.OverallScore,
		OverallPassed: rec.OverallPassed,
		CheckScores:   rec.CheckScores,
		CheckPassed:   rec.CheckPassed,
		Issues:        rec.Issues,
		Result:        rec.Result,
	}
}

// ToDomainList converts a slice of DynamoDTOs to model ValidationRecords
func ToDomainList(dtos []*DynamoDTO) []*model.ValidationRecord {
	records := make([]*model.ValidationRecord, len(dtos))
	for i, dto := range dtos {
		records[i] = dto.ToDomain()
	}
	return records
}

// FromDomainList creates a slice of DynamoDTOs from model ValidationRecords
func FromDomainList(records []*model.ValidationRecord) []*DynamoDTO {
	dtos := make([]*DynamoDTO, len(records))
	for i, rec := range records {
		dtos[i] = FromDomain(rec)
	}
	return dtos
}
