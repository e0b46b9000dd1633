package quality

// Kind classifies a field for coercion, outlier checks, and standardization.
type Kind string

const (
	Text    Kind = "text"
	Numeric Kind = "numeric"
	Date    Kind = "date"
)

// FillKind selects the missing-value policy for a non-critical field.
type FillKind string

const (
	// FillNone leaves missing values alone.
	FillNone FillKind = ""
	// FillMode fills with the most frequent observed value, falling back to
	// the Sentinel when the column has no observed values.
	FillMode FillKind = "mode"
	// FillMedian fills numerics with the column median; when GroupBy names a
	// categorical field, the per-group median is preferred. Sentinel (parsed
	// numerically) is the last resort.
	FillMedian FillKind = "median"
	// FillConst fills with the Sentinel literal.
	FillConst FillKind = "const"
	// FillDerived builds "<group>-<Sentinel>-<business key>", used for
	// generic product names.
	FillDerived FillKind = "derived"
)

// Fill is a field's missing-value policy.
type Fill struct {
	Kind     FillKind
	Sentinel string
	GroupBy  string
}

// Range is a numeric interval. Has gates the whole check; checks are applied
// only to values that parse numerically, so text business keys pass through
// untouched. ExclusiveMin makes the lower bound strict (amounts must be
// positive, not merely non-negative). NoMax leaves the interval unbounded
// above.
type Range struct {
	Min, Max     float64
	ExclusiveMin bool
	NoMax        bool
	Has          bool
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v float64) bool {
	if r.ExclusiveMin {
		if v <= r.Min {
			return false
		}
	} else if v < r.Min {
		return false
	}
	if r.NoMax {
		return true
	}
	return v <= r.Max
}

// Field declares one column's contract.
type Field struct {
	Name string
	Kind Kind

	// Critical fields identify the row; a missing value drops the row and a
	// column entirely absent from the input schema is fatal.
	Critical bool

	Fill Fill

	// Business is the hard domain range enforced at the outlier stage.
	Business Range
	// IQR enables the statistical bound at the outlier stage; IQRUpperOnly
	// restricts it to the upper fence (counts, stock).
	IQR          bool
	IQRUpperOnly bool

	// DateMin bounds date fields (ISO); DateMaxNow caps them at run time.
	DateMin    string
	DateMaxNow bool

	// Validation rules beyond ranges.
	Enum           []string
	MinLen, MaxLen int
	IDRange        Range
	ValueRange     Range
	RequireLetter  bool

	// Standardization.
	TitleCase          bool
	CollapseSpace      bool
	UnderscoreToHyphen bool
	Round2             bool
	Integer            bool
}

// CrossRule is a cross-field consistency contract. When Price is set and the
// record carries all three fields, the declared amount must equal
// price*quantity within Tolerance (relative). Otherwise the derived unit
// price amount/quantity must fall inside UnitPrice.
type CrossRule struct {
	Name      string
	Amount    string
	Quantity  string
	Price     string
	UnitPrice Range
	Tolerance float64
}

// Contract is a dataset's full cleaning contract.
type Contract struct {
	Dataset string

	// Key is the business-key field (deduplication and FK resolution).
	Key string

	// NameField, when set, is the descriptive name checked for duplicates
	// under distinct business keys (flagged, not removed).
	NameField string

	// DupFlagFields, when set, flags rows agreeing on all listed fields
	// (e.g. same customer, same day, same product) for manual review.
	DupFlagFields []string

	Fields []Field
	Cross  []CrossRule
}

// Field returns the declared field by name, or nil.
func (c Contract) Field(name string) *Field {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// CriticalFields lists the fields whose columns must exist in the input.
func (c Contract) CriticalFields() []string {
	var out []string
	for _, f := range c.Fields {
		if f.Critical {
			out = append(out, f.Name)
		}
	}
	return out
}
