package domain

var (
	MessageSuccessRegister = "user registered successfully"
	MessageSuccessLogin    = "login successful"
	MessageFailedRegister  = "failed to register user"
	MessageFailedLogin     = "failed to login"

	ErrUserNotFound       = NewError(ErrNotFound, "User not found")
	ErrInvalidCredentials = NewError(ErrAuth, "Invalid credentials")
	ErrEmailRegistered    = NewError(ErrValidation, "Email already registered")
)

type (
	Fullname struct {
		Firstname string `json:"firstname" validate:"required"`
		Lastname  string `json:"lastname" validate:"required"`
	}

	RegisterRequest struct {
		Fullname Fullname `json:"fullname" validate:"required"`
		Email    string   `json:"email" validate:"required,email"`
		Password string   `json:"password" validate:"required,min=5"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	User struct {
		ID       string   `json:"id"`
		Fullname Fullname `json:"fullname"`
		Email    string   `json:"email"`
	}

	UserSummary struct {
		ID       string   `json:"id"`
		Fullname Fullname `json:"fullname"`
		Email    string   `json:"email"`
	}

	AuthResponse struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
)
