package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Govind-619/EnrollSphere/config"
	"github.com/Govind-619/EnrollSphere/metrics"
	"github.com/Govind-619/EnrollSphere/models"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TypeformField struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Ref  string `json:"ref"`
}

type TypeformChoice struct {
	Label string `json:"label"`
	Other string `json:"other"`
}

type TypeformChoices struct {
	Labels []string `json:"labels"`
	Other  string   `json:"other"`
}

type TypeformAnswer struct {
	Type        string           `json:"type"`
	Text        string           `json:"text"`
	Email       string           `json:"email"`
	PhoneNumber string           `json:"phone_number"`
	Number      *float64         `json:"number"`
	Boolean     *bool            `json:"boolean"`
	Date        string           `json:"date"`
	URL         string           `json:"url"`
	Choice      *TypeformChoice  `json:"choice"`
	Choices     *TypeformChoices `json:"choices"`
	Field       TypeformField    `json:"field"`
}

// Value flattens the answer to a string whatever its question type
func (a TypeformAnswer) Value() string {
	switch {
	case a.Text != "":
		return a.Text
	case a.Email != "":
		return a.Email
	case a.PhoneNumber != "":
		return a.PhoneNumber
	case a.Number != nil:
		return strconv.FormatFloat(*a.Number, 'f', -1, 64)
	case a.Boolean != nil:
		return strconv.FormatBool(*a.Boolean)
	case a.Choice != nil:
		if a.Choice.Label != "" {
			return a.Choice.Label
		}
		return a.Choice.Other
	case a.Choices != nil:
		labels := a.Choices.Labels
		if a.Choices.Other != "" {
			labels = append(labels, a.Choices.Other)
		}
		return strings.Join(labels, ", ")
	case a.Date != "":
		return a.Date
	}
	return a.URL
}

// TypeformPayload is the form_response webhook body
type TypeformPayload struct {
	EventID      string `json:"event_id"`
	EventType    string `json:"event_type"`
	FormResponse struct {
		FormID      string           `json:"form_id"`
		Token       string           `json:"token"`
		SubmittedAt string           `json:"submitted_at"`
		Answers     []TypeformAnswer `json:"answers"`
	} `json:"form_response"`
}

// AnswersByRef indexes non-empty answers by their field ref
func (p *TypeformPayload) AnswersByRef() map[string]string {
	out := make(map[string]string, len(p.FormResponse.Answers))
	for _, a := range p.FormResponse.Answers {
		if a.Field.Ref == "" {
			continue
		}
		if v := strings.TrimSpace(a.Value()); v != "" {
			out[a.Field.Ref] = v
		}
	}
	return out
}

type EnquiryService struct {
	db       *gorm.DB
	refs     config.TypeformRefs
	validate *validator.Validate
	events   EventPublisher
}

func NewEnquiryService(db *gorm.DB, refs config.TypeformRefs) *EnquiryService {
	return &EnquiryService{
		db:       db,
		refs:     refs,
		validate: validator.New(),
		events:   NoopPublisher{},
	}
}

func (s *EnquiryService) WithEvents(events EventPublisher) *EnquiryService {
	if events != nil {
		s.events = events
	}
	return s
}

// IngestTypeform stores the enquiry carried by a form_response delivery.
// created is false when the response token was already recorded.
func (s *EnquiryService) IngestTypeform(ctx context.Context, body []byte) (enquiry *models.Enquiry, created bool, err error) {
	var payload TypeformPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false, utils.BadRequestError("Malformed form payload", err)
	}

	answers := payload.AnswersByRef()
	enquiry = &models.Enquiry{
		Name:     utils.SanitizeText(answers[s.refs.Name]),
		Email:    strings.ToLower(answers[s.refs.Email]),
		Phone:    answers[s.refs.Phone],
		District: utils.Title(utils.SanitizeText(answers[s.refs.District])),
		Course:   utils.SanitizeText(answers[s.refs.Course]),
		Message:  utils.SanitizeText(answers[s.refs.Message]),
		Source:   models.EnquirySourceTypeform,
		FormID:   payload.FormResponse.FormID,
		Payload:  datatypes.JSON(body),
	}

	var missing utils.FieldValidationErrors
	for _, f := range []struct{ name, value string }{
		{"name", enquiry.Name},
		{"email", enquiry.Email},
		{"phone", enquiry.Phone},
		{"district", enquiry.District},
	} {
		if f.value == "" {
			missing = append(missing, utils.FieldValidationError{Field: f.name, Message: "is required"})
		}
	}
	if len(missing) > 0 {
		return nil, false, utils.BadRequestError("Missing required fields: "+strings.Join(missing.Fields(), ", "), missing)
	}

	var invalid utils.FieldValidationErrors
	if err := s.validate.Var(enquiry.Email, "email"); err != nil {
		invalid = append(invalid, utils.FieldValidationError{Field: "email", Message: "must be a valid email address"})
	}
	if phone, err := utils.NormalizePhone(enquiry.Phone); err != nil {
		invalid = append(invalid, utils.FieldValidationError{Field: "phone", Message: err.Error()})
	} else {
		enquiry.Phone = phone
	}
	if ok, msg := utils.ValidateName(enquiry.Name); !ok {
		invalid = append(invalid, utils.FieldValidationError{Field: "name", Message: msg})
	}
	if len(invalid) > 0 {
		return nil, false, utils.BadRequestError("Invalid enquiry", invalid)
	}

	db := s.db.WithContext(ctx)
	if token := payload.FormResponse.Token; token != "" {
		var existing models.Enquiry
		err := db.Where("response_token = ?", token).First(&existing).Error
		if err == nil {
			utils.LogInfo("Typeform response %s already recorded as enquiry %d", token, existing.ID)
			return &existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, errors.Wrap(err, "check response token")
		}
		enquiry.ResponseToken = &token
	}

	if err := db.Create(enquiry).Error; err != nil {
		return nil, false, errors.Wrap(err, "create enquiry")
	}
	metrics.IncEnquiry()
	utils.LogInfo("Enquiry %d recorded from form %s", enquiry.ID, enquiry.FormID)

	publishAfterCommit(ctx, s.events, TopicEnquiryReceived, strconv.FormatUint(uint64(enquiry.ID), 10), enquiry)
	return enquiry, true, nil
}

// List returns one page of enquiries, optionally for one district
func (s *EnquiryService) List(ctx context.Context, district string, p *utils.Pagination) ([]models.Enquiry, error) {
	query := s.db.WithContext(ctx).Model(&models.Enquiry{})
	if district != "" {
		query = query.Where("LOWER(district) = LOWER(?)", district)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count enquiries")
	}
	p.SetTotal(total)

	var enquiries []models.Enquiry
	err := query.Order("created_at DESC, id DESC").Scopes(p.Scope).Find(&enquiries).Error
	return enquiries, errors.Wrap(err, "list enquiries")
}
