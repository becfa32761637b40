package errors

// Message keys. The UI maps them to localized text; the service never
// formats prose itself.
const (
	KeyFirstNameRequired          = "first_name_required"
	KeyFirstNameMinLength         = "first_name_min_length"
	KeyFirstNameMaxLength         = "first_name_max_length"
	KeyFirstNameInvalidCharacters = "first_name_invalid_characters"

	KeyLastNameRequired          = "last_name_required"
	KeyLastNameMinLength         = "last_name_min_length"
	KeyLastNameMaxLength         = "last_name_max_length"
	KeyLastNameInvalidCharacters = "last_name_invalid_characters"

	KeyEmailRequired  = "email_required"
	KeyEmailMinLength = "email_min_length"
	KeyEmailMaxLength = "email_max_length"
	KeyEmailInvalid   = "email_invalid"

	KeyPhoneRequired  = "phone_required"
	KeyPhoneInvalid   = "phone_invalid"
	KeyPhoneMinLength = "phone_min_length"
	KeyPhoneMaxLength = "phone_max_length"

	KeyDepartmentRequired = "department_required"
	KeyDepartmentInvalid  = "department_invalid"
	KeyPositionRequired   = "position_required"
	KeyPositionInvalid    = "position_invalid"

	KeyDateOfEmploymentRequired = "date_of_employment_required"
	KeyDateOfEmploymentFuture   = "date_of_employment_future"
	KeyDateOfBirthFuture        = "date_of_birth_future"
	KeyDateOfBirthTooEarly      = "date_of_birth_too_early"

	// Malformed dates on the wire, reported before the field rules run.
	KeyDateOfEmploymentInvalid = "date_of_employment_invalid"
	KeyDateOfBirthInvalid      = "date_of_birth_invalid"

	KeySalaryMin = "salary_min"
	KeySalaryMax = "salary_max"

	KeyNameExists         = "first_name_last_name_exists"
	KeyNameBirthdayExists = "first_name_last_name_birthday_exists"
	KeyEmailExists        = "email_already_exists"
)
