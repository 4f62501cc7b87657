package dal

import (
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/store"
)

// CreateSubjectRequest captures fields for creating subjects.
type CreateSubjectRequest struct {
	Name        string   `json:"name" validate:"required"`
	Grade       string   `json:"grade"`
	Color       string   `json:"color"`
	Icon        string   `json:"icon"`
	Order       int      `json:"order" validate:"gte=0"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// UpdateSubjectRequest carries a partial subject update: only non-nil fields
// reach the store, preserving its merge semantics.
type UpdateSubjectRequest struct {
	Name        *string   `json:"name"`
	Grade       *string   `json:"grade"`
	Color       *string   `json:"color"`
	Icon        *string   `json:"icon"`
	Order       *int      `json:"order"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
}

func (r UpdateSubjectRequest) partial() store.Document {
	doc := store.Document{}
	setString(doc, "name", r.Name)
	setString(doc, "grade", r.Grade)
	setString(doc, "color", r.Color)
	setString(doc, "icon", r.Icon)
	if r.Order != nil {
		doc["order"] = *r.Order
	}
	setString(doc, "description", r.Description)
	if r.Tags != nil {
		doc["tags"] = *r.Tags
	}
	return doc
}

// CreateResourceRequest captures fields for creating resources. Size is the
// human-entered string from the admin form ("2.5 MB"); it is parsed into
// bytes before storage.
type CreateResourceRequest struct {
	SubjectID   string   `json:"subjectId" validate:"required"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	URL         string   `json:"url" validate:"required,url"`
	Type        string   `json:"type"`
	Tags        []string `json:"tags"`
	Size        string   `json:"size"`
}

// UpdateResourceRequest is a partial resource update.
type UpdateResourceRequest struct {
	SubjectID   *string   `json:"subjectId"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	URL         *string   `json:"url"`
	Type        *string   `json:"type"`
	Tags        *[]string `json:"tags"`
	Size        *string   `json:"size"`
}

func (r UpdateResourceRequest) partial() store.Document {
	doc := store.Document{}
	setString(doc, "subjectId", r.SubjectID)
	setString(doc, "title", r.Title)
	setString(doc, "description", r.Description)
	setString(doc, "url", r.URL)
	setString(doc, "type", r.Type)
	if r.Tags != nil {
		doc["tags"] = *r.Tags
	}
	return doc
}

// CreatePublicationRequest captures fields for creating publications.
type CreatePublicationRequest struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Author   string `json:"author"`
	ImageURL string `json:"imageUrl"`
}

// UpdatePublicationRequest is a partial publication update.
type UpdatePublicationRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Author   *string `json:"author"`
	ImageURL *string `json:"imageUrl"`
}

func (r UpdatePublicationRequest) partial() store.Document {
	doc := store.Document{}
	setString(doc, "title", r.Title)
	setString(doc, "content", r.Content)
	setString(doc, "author", r.Author)
	setString(doc, "imageUrl", r.ImageURL)
	return doc
}

// AddCommentRequest appends a comment to a publication.
type AddCommentRequest struct {
	Author string `json:"author" validate:"required"`
	Text   string `json:"text" validate:"required"`
}

// UpdateSchoolInfoRequest is a partial update of the school singleton.
type UpdateSchoolInfoRequest struct {
	Name        *string `json:"name"`
	Motto       *string `json:"motto"`
	History     *string `json:"history"`
	Mission     *string `json:"mission"`
	Vision      *string `json:"vision"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Schedule    *string `json:"schedule"`
	DevelopedBy *string `json:"developedBy"`
}

func (r UpdateSchoolInfoRequest) partial() store.Document {
	doc := store.Document{}
	setString(doc, "name", r.Name)
	setString(doc, "motto", r.Motto)
	setString(doc, "history", r.History)
	setString(doc, "mission", r.Mission)
	setString(doc, "vision", r.Vision)
	setString(doc, "address", r.Address)
	setString(doc, "phone", r.Phone)
	setString(doc, "email", r.Email)
	setString(doc, "schedule", r.Schedule)
	setString(doc, "developedBy", r.DevelopedBy)
	return doc
}

func setString(doc store.Document, key string, value *string) {
	if value != nil {
		doc[key] = *value
	}
}
