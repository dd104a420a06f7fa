package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/audit"
	"github.com/yahayabawa/maktaba/internal/auth"
	"github.com/yahayabawa/maktaba/internal/circulation"
	"github.com/yahayabawa/maktaba/internal/database/loans"
	"github.com/yahayabawa/maktaba/internal/database/users"
	"github.com/yahayabawa/maktaba/internal/entities"
)

type UsersController struct {
	users       *users.Repository
	loans       *loans.Repository
	auth        *auth.Service
	circulation *circulation.Service
	audit       *audit.Service
}

func NewUsersController(usersRepo *users.Repository, loansRepo *loans.Repository, authSvc *auth.Service, circulationSvc *circulation.Service, auditSvc *audit.Service) *UsersController {
	return &UsersController{
		users:       usersRepo,
		loans:       loansRepo,
		auth:        authSvc,
		circulation: circulationSvc,
		audit:       auditSvc,
	}
}

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string         `json:"token"`
	User  *entities.User `json:"user"`
}

// Register creates a member account and returns a session token.
func (controller *UsersController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Wrap(apperror.KindValidation, "invalid registration payload", err), "register")
		return
	}

	user := entities.User{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Role:        entities.RoleUser,
	}
	if err := controller.auth.Register(&user, req.Password); err != nil {
		respondError(c, err, "register")
		return
	}

	token, _, err := controller.auth.Login(user.Email, req.Password)
	if err != nil {
		respondError(c, err, "register")
		return
	}
	controller.audit.LogAuth(user.ID, "user_register", c.ClientIP(), nil)
	respondCreated(c, "registration successful", authResponse{Token: token, User: &user})
}

// Login verifies credentials and returns a signed token.
func (controller *UsersController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Wrap(apperror.KindValidation, "invalid login payload", err), "login")
		return
	}
	token, user, err := controller.auth.Login(req.Email, req.Password)
	if err != nil {
		controller.audit.LogAuth(0, "user_login", c.ClientIP(), err)
		respondError(c, err, "login")
		return
	}
	controller.audit.LogAuth(user.ID, "user_login", c.ClientIP(), nil)
	respondMessage(c, "login successful", authResponse{Token: token, User: user})
}

// Profile returns the authenticated user with their loans.
func (controller *UsersController) Profile(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		respondError(c, apperror.NewUnauthenticated("not authenticated"), "profile")
		return
	}
	controller.attachLoans(user)
	respondData(c, user)
}

// UpdateProfile lets a user change their own contact details. Email, role
// and membership ID are not writable here.
func (controller *UsersController) UpdateProfile(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		respondError(c, apperror.NewUnauthenticated("not authenticated"), "update profile")
		return
	}

	var payload struct {
		Name        string `json:"name"`
		PhoneNumber string `json:"phoneNumber"`
		Address     string `json:"address"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, apperror.Wrap(apperror.KindValidation, "invalid profile payload", err), "update profile")
		return
	}

	if payload.Name != "" {
		user.Name = payload.Name
	}
	user.PhoneNumber = payload.PhoneNumber
	user.Address = payload.Address

	if err := controller.users.Update(user); err != nil {
		respondError(c, err, "update profile")
		return
	}
	respondMessage(c, "profile updated successfully", user)
}

// ChangePassword verifies the current password before setting a new one.
func (controller *UsersController) ChangePassword(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		respondError(c, apperror.NewUnauthenticated("not authenticated"), "change password")
		return
	}

	var payload struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, apperror.Wrap(apperror.KindValidation, "invalid password payload", err), "change password")
		return
	}

	if err := controller.auth.ChangePassword(user.ID, payload.CurrentPassword, payload.NewPassword); err != nil {
		respondError(c, err, "change password")
		return
	}
	respondMessage(c, "password changed successfully", nil)
}

// Borrow checks out a copy of a book for the authenticated user.
func (controller *UsersController) Borrow(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		respondError(c, apperror.NewUnauthenticated("not authenticated"), "borrow book")
		return
	}
	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		respondError(c, err, "borrow book")
		return
	}
	loan, err := controller.circulation.Borrow(bookID, user.ID)
	controller.audit.LogCirculation(user.ID, "book_borrow", bookID, err)
	if err != nil {
		respondError(c, err, "borrow book")
		return
	}
	respondMessage(c, "book borrowed successfully", loan)
}

// Return checks a borrowed copy back in.
func (controller *UsersController) Return(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		respondError(c, apperror.NewUnauthenticated("not authenticated"), "return book")
		return
	}
	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		respondError(c, err, "return book")
		return
	}
	loan, err := controller.circulation.Return(bookID, user.ID)
	controller.audit.LogCirculation(user.ID, "book_return", bookID, err)
	if err != nil {
		respondError(c, err, "return book")
		return
	}
	respondMessage(c, "book returned successfully", loan)
}

// List returns all users with their loans. Admin only.
func (controller *UsersController) List(c *gin.Context) {
	result, err := controller.users.List()
	if err != nil {
		respondError(c, err, "list users")
		return
	}
	for i := range result {
		controller.attachLoans(&result[i])
	}
	respondList(c, result, len(result))
}

// Get returns one user with their loans. Admin only.
func (controller *UsersController) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "get user")
		return
	}
	user, err := controller.users.GetByID(id)
	if err != nil {
		respondError(c, err, "get user")
		return
	}
	controller.attachLoans(user)
	respondData(c, user)
}

// Update lets an admin change a user's details and role. Membership ID and
// password hash are never writable here.
func (controller *UsersController) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "update user")
		return
	}
	existing, err := controller.users.GetByID(id)
	if err != nil {
		respondError(c, err, "update user")
		return
	}

	user := *existing
	if err := c.ShouldBindJSON(&user); err != nil {
		respondError(c, apperror.Wrap(apperror.KindValidation, "invalid user payload", err), "update user")
		return
	}
	user.ID = existing.ID
	user.MembershipID = existing.MembershipID
	user.PasswordHash = existing.PasswordHash
	user.CreatedAt = existing.CreatedAt

	if err := controller.users.Update(&user); err != nil {
		respondError(c, err, "update user")
		return
	}
	if user.Role != existing.Role {
		controller.audit.LogUser(currentUserID(c), "user_role_change", user.ID,
			"changed role of "+user.Email+" to "+string(user.Role))
	}
	respondMessage(c, "user updated successfully", user)
}

// Delete removes a user account. Users with open loans are rejected.
func (controller *UsersController) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "delete user")
		return
	}
	open, err := controller.loans.CountOpenByUser(id)
	if err != nil {
		respondError(c, err, "delete user")
		return
	}
	if open > 0 {
		respondError(c, apperror.New(apperror.KindHasDependents,
			"cannot delete a user with borrowed books, return them first"), "delete user")
		return
	}
	if err := controller.users.Delete(id); err != nil {
		respondError(c, err, "delete user")
		return
	}
	controller.audit.LogUser(currentUserID(c), "user_delete", id, "deleted user account")
	respondMessage(c, "user deleted successfully", nil)
}

func (controller *UsersController) attachLoans(user *entities.User) {
	userLoans, err := controller.loans.ListByUser(user.ID)
	if err != nil {
		return
	}
	user.BorrowedBooks = userLoans
}
