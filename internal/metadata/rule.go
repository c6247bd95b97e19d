package metadata

// RuleDefinition describes one check on a request payload.
type RuleDefinition struct {
	// Field rules
	Field    string `json:"field,omitempty"`
	Operator string `json:"operator,omitempty"`
	Value    any    `json:"value,omitempty"`

	// Expression rules. The expression sees the payload as `record` and is
	// violated when it evaluates to true.
	Expression string `json:"expression,omitempty"`

	// Shared
	Message    string `json:"message,omitempty"`
	StopOnFail bool   `json:"stop_on_fail,omitempty"`
}

// Rule is a validation rule bound to one payload ("post.create", ...).
type Rule struct {
	Payload    string         `json:"payload"`
	Type       string         `json:"type"` // "field" or "expression"
	Definition RuleDefinition `json:"definition"`

	// Compiled holds the compiled expression program (set at load time, not serialized).
	Compiled any `json:"-"`
}

// Payload names.
const (
	PayloadUserRegister   = "user.register"
	PayloadUserLogin      = "user.login"
	PayloadUserUpdate     = "user.update"
	PayloadProfileUpdate  = "profile.update"
	PayloadCategoryCreate = "category.create"
	PayloadCategoryUpdate = "category.update"
	PayloadPostCreate     = "post.create"
	PayloadPostUpdate     = "post.update"
	PayloadCommentCreate  = "comment.create"
	PayloadCommentUpdate  = "comment.update"
)

func field(payload, name, op string, value any) *Rule {
	return &Rule{Payload: payload, Type: "field", Definition: RuleDefinition{Field: name, Operator: op, Value: value}}
}

// text declares a string field with rune length bounds; max <= 0 means unbounded.
func text(payload, name string, required bool, min, max int) []*Rule {
	var rules []*Rule
	if required {
		rules = append(rules, field(payload, name, "required", nil))
	}
	rules = append(rules, field(payload, name, "string", nil), field(payload, name, "min_length", min))
	if max > 0 {
		rules = append(rules, field(payload, name, "max_length", max))
	}
	return rules
}

func join(groups ...[]*Rule) []*Rule {
	var out []*Rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// PayloadRules returns a fresh rule set for every payload the API accepts.
func PayloadRules() map[string][]*Rule {
	return map[string][]*Rule{
		PayloadUserRegister: join(
			text(PayloadUserRegister, "username", true, 1, 100),
			text(PayloadUserRegister, "email", true, 1, 100),
			text(PayloadUserRegister, "password", true, 1, 255),
			text(PayloadUserRegister, "fullName", true, 1, 250),
			text(PayloadUserRegister, "bio", false, 1, 0),
		),
		PayloadUserLogin: join(
			text(PayloadUserLogin, "email", true, 1, 100),
			text(PayloadUserLogin, "password", true, 1, 255),
		),
		PayloadUserUpdate: join(
			text(PayloadUserUpdate, "username", false, 1, 100),
			text(PayloadUserUpdate, "email", false, 1, 100),
			text(PayloadUserUpdate, "password", false, 1, 255),
		),
		PayloadProfileUpdate: join(
			text(PayloadProfileUpdate, "fullName", false, 1, 250),
			text(PayloadProfileUpdate, "bio", false, 1, 0),
		),
		PayloadCategoryCreate: join(
			text(PayloadCategoryCreate, "name", true, 1, 100),
			text(PayloadCategoryCreate, "description", true, 1, 0),
		),
		PayloadCategoryUpdate: text(PayloadCategoryUpdate, "description", true, 1, 0),
		PayloadPostCreate: join(
			text(PayloadPostCreate, "title", true, 1, 250),
			text(PayloadPostCreate, "content", true, 1, 0),
			[]*Rule{
				field(PayloadPostCreate, "category", "required", nil),
				field(PayloadPostCreate, "category", "id_list", nil),
				field(PayloadPostCreate, "category", "min_items", 1),
				field(PayloadPostCreate, "isPublished", "bool", nil),
			},
		),
		PayloadPostUpdate: join(
			text(PayloadPostUpdate, "title", false, 1, 250),
			text(PayloadPostUpdate, "content", false, 1, 0),
			[]*Rule{
				field(PayloadPostUpdate, "category", "id_list", nil),
				field(PayloadPostUpdate, "category", "min_items", 1),
				field(PayloadPostUpdate, "isPublished", "bool", nil),
				{
					Payload: PayloadPostUpdate,
					Type:    "expression",
					Definition: RuleDefinition{
						Expression: `len(record) == 0`,
						Message:    "At least one field is required",
					},
				},
			},
		),
		PayloadCommentCreate: text(PayloadCommentCreate, "content", true, 1, 0),
		PayloadCommentUpdate: text(PayloadCommentUpdate, "content", true, 1, 0),
	}
}
