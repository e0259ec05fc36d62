package model

// EntityDocument is a read-only snapshot of an entity at one revision.
// The implementations are the pointer types of the documents in this package.
type EntityDocument interface {
	EntityID() EntityID
	// Revision returns the revision id of the snapshot, 0 if unknown.
	Revision() int64
	entityDocument()
}

// LabeledDocument is a document with labels.
type LabeledDocument interface {
	EntityDocument
	LabelTerms() map[string]Term
}

// TermedDocument is a document with labels, descriptions and aliases.
type TermedDocument interface {
	LabeledDocument
	DescriptionTerms() map[string]Term
	AliasTerms() map[string][]Term
}

// StatementDocument is a document with statements.
type StatementDocument interface {
	EntityDocument
	StatementList() []Statement
}

type ItemDocument struct {
	ID           EntityID
	RevisionID   int64
	Labels       map[string]Term
	Descriptions map[string]Term
	Aliases      map[string][]Term
	Statements   []Statement
	SiteLinks    map[string]SiteLink
}

type PropertyDocument struct {
	ID           EntityID
	RevisionID   int64
	Labels       map[string]Term
	Descriptions map[string]Term
	Aliases      map[string][]Term
	Statements   []Statement
	Datatype     string
}

type MediaInfoDocument struct {
	ID         EntityID
	RevisionID int64
	Labels     map[string]Term
	Statements []Statement
}

type LexemeDocument struct {
	ID              EntityID
	RevisionID      int64
	Lemmas          map[string]Term
	Language        EntityID
	LexicalCategory EntityID
	Statements      []Statement
	Forms           []FormDocument
	Senses          []SenseDocument
}

type FormDocument struct {
	ID                  EntityID
	RevisionID          int64
	Representations     map[string]Term
	GrammaticalFeatures []EntityID
	Statements          []Statement
}

type SenseDocument struct {
	ID         EntityID
	RevisionID int64
	Glosses    map[string]Term
	Statements []Statement
}

func (d *ItemDocument) EntityID() EntityID                { return d.ID }
func (d *ItemDocument) Revision() int64                   { return d.RevisionID }
func (d *ItemDocument) LabelTerms() map[string]Term       { return d.Labels }
func (d *ItemDocument) DescriptionTerms() map[string]Term { return d.Descriptions }
func (d *ItemDocument) AliasTerms() map[string][]Term     { return d.Aliases }
func (d *ItemDocument) StatementList() []Statement        { return d.Statements }
func (d *ItemDocument) entityDocument()                   {}

func (d *PropertyDocument) EntityID() EntityID                { return d.ID }
func (d *PropertyDocument) Revision() int64                   { return d.RevisionID }
func (d *PropertyDocument) LabelTerms() map[string]Term       { return d.Labels }
func (d *PropertyDocument) DescriptionTerms() map[string]Term { return d.Descriptions }
func (d *PropertyDocument) AliasTerms() map[string][]Term     { return d.Aliases }
func (d *PropertyDocument) StatementList() []Statement        { return d.Statements }
func (d *PropertyDocument) entityDocument()                   {}

func (d *MediaInfoDocument) EntityID() EntityID          { return d.ID }
func (d *MediaInfoDocument) Revision() int64             { return d.RevisionID }
func (d *MediaInfoDocument) LabelTerms() map[string]Term { return d.Labels }
func (d *MediaInfoDocument) StatementList() []Statement  { return d.Statements }
func (d *MediaInfoDocument) entityDocument()             {}

func (d *LexemeDocument) EntityID() EntityID         { return d.ID }
func (d *LexemeDocument) Revision() int64            { return d.RevisionID }
func (d *LexemeDocument) StatementList() []Statement { return d.Statements }
func (d *LexemeDocument) entityDocument()            {}

func (d *FormDocument) EntityID() EntityID         { return d.ID }
func (d *FormDocument) Revision() int64            { return d.RevisionID }
func (d *FormDocument) StatementList() []Statement { return d.Statements }
func (d *FormDocument) entityDocument()            {}

func (d *SenseDocument) EntityID() EntityID         { return d.ID }
func (d *SenseDocument) Revision() int64            { return d.RevisionID }
func (d *SenseDocument) StatementList() []Statement { return d.Statements }
func (d *SenseDocument) entityDocument()            {}

// Sense looks up a sense of the lexeme by id.
func (d *LexemeDocument) Sense(id EntityID) (*SenseDocument, bool) {
	for i := range d.Senses {
		if d.Senses[i].ID == id {
			return &d.Senses[i], true
		}
	}
	return nil, false
}

// Form looks up a form of the lexeme by id.
func (d *LexemeDocument) Form(id EntityID) (*FormDocument, bool) {
	for i := range d.Forms {
		if d.Forms[i].ID == id {
			return &d.Forms[i], true
		}
	}
	return nil, false
}
