// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package v1

import (
	"fmt"
	"net/http"
)

type ErrorStatusT int

const (
	// PressWWWAPIVersion is the API version this backend understands.
	PressWWWAPIVersion = 1

	// APIRoute is prefixed onto all routes defined in this package.
	APIRoute = "/api/v1"

	RouteVersion         = "/version"
	RoutePolicy          = "/policy"
	RouteSignup          = "/auth/signup"
	RouteSignin          = "/auth/signin"
	RouteForgotPassword  = "/auth/forgot-password"
	RouteResetPassword   = "/auth/reset-password"
	RouteChangePassword  = "/auth/change-password"
	RouteVerifyEmail     = "/auth/verify-email"
	RoutePosts           = "/posts"
	RoutePostDetails     = "/posts/{postid:[0-9]+}"
	RoutePostBySlug      = "/posts/slug/{slug}"
	RouteSearchPosts     = "/posts/search/{query}"
	RouteUserPosts       = "/posts/user/{userid:[0-9a-zA-Z-]{36}}"
	RouteComments        = "/comments/post/{postid:[0-9]+}"
	RouteCommentDetails  = "/comments/{commentid:[0-9]+}"
	RouteApproveComment  = "/comments/{commentid:[0-9]+}/approve"
	RouteCategories      = "/categories"
	RouteCategoryDetails = "/categories/{categoryid:[0-9]+}"
	RouteTags            = "/tags"
	RouteTagDetails      = "/tags/{tagid:[0-9]+}"

	// PolicyMinPasswordLength is the minimum number of characters
	// accepted for user passwords.
	PolicyMinPasswordLength = 8

	// PolicyMinUsernameLength is the min length of a username.
	PolicyMinUsernameLength = 3

	// PolicyMaxUsernameLength is the max length of a username.
	PolicyMaxUsernameLength = 100

	// PolicyMaxEmailLength is the max length of an email address.
	PolicyMaxEmailLength = 255

	// PolicyMaxTitleLength is the max length of a post title and slug.
	PolicyMaxTitleLength = 255

	// PolicyMaxNameLength is the max length of a category or tag name
	// and slug.
	PolicyMaxNameLength = 100

	// PolicyPostsPageSizeDefault is the number of posts returned when
	// the caller does not specify a limit.
	PolicyPostsPageSizeDefault = 10

	// PolicyPostsPageSizeMax is the maximum number of posts returned
	// for the routes that return lists of posts.
	PolicyPostsPageSizeMax = 100

	// PolicyCommentsPageSizeDefault is the number of comments returned
	// when the caller does not specify a limit.
	PolicyCommentsPageSizeDefault = 20

	// PolicyCommentsPageSizeMax is the maximum number of comments
	// returned for the routes that return lists of comments.
	PolicyCommentsPageSizeMax = 100

	// PolicyTaxonomyPageSizeDefault is the number of categories or tags
	// returned when the caller does not specify a limit.
	PolicyTaxonomyPageSizeDefault = 100

	// PolicyTaxonomyPageSizeMax is the maximum number of categories or
	// tags returned for the routes that return lists of them.
	PolicyTaxonomyPageSizeMax = 500

	// Error status codes
	ErrorStatusInvalid              ErrorStatusT = 0
	ErrorStatusInvalidInput         ErrorStatusT = 1
	ErrorStatusMalformedEmail       ErrorStatusT = 2
	ErrorStatusMalformedUsername    ErrorStatusT = 3
	ErrorStatusMalformedPassword    ErrorStatusT = 4
	ErrorStatusDuplicateEmail       ErrorStatusT = 5
	ErrorStatusDuplicateUsername    ErrorStatusT = 6
	ErrorStatusInvalidCredentials   ErrorStatusT = 7
	ErrorStatusUserInactive         ErrorStatusT = 8
	ErrorStatusNotLoggedIn          ErrorStatusT = 9
	ErrorStatusInvalidToken         ErrorStatusT = 10
	ErrorStatusInvalidResetToken    ErrorStatusT = 11
	ErrorStatusIncorrectPassword    ErrorStatusT = 12
	ErrorStatusUserNotFound         ErrorStatusT = 13
	ErrorStatusPostNotFound         ErrorStatusT = 14
	ErrorStatusCommentNotFound      ErrorStatusT = 15
	ErrorStatusCategoryNotFound     ErrorStatusT = 16
	ErrorStatusTagNotFound          ErrorStatusT = 17
	ErrorStatusDuplicatePostSlug    ErrorStatusT = 18
	ErrorStatusDuplicateCategory    ErrorStatusT = 19
	ErrorStatusDuplicateTag         ErrorStatusT = 20
	ErrorStatusCannotEditPost       ErrorStatusT = 21
	ErrorStatusCannotDeletePost     ErrorStatusT = 22
	ErrorStatusCannotEditComment    ErrorStatusT = 23
	ErrorStatusCannotDeleteComment  ErrorStatusT = 24
	ErrorStatusCannotApproveComment ErrorStatusT = 25
	ErrorStatusCannotDeleteCategory ErrorStatusT = 26
	ErrorStatusCannotDeleteTag      ErrorStatusT = 27
)

var (
	// ErrorStatus converts error status codes to human readable text.
	// The messages are part of the public API contract; clients display
	// them verbatim.
	ErrorStatus = map[ErrorStatusT]string{
		ErrorStatusInvalid:              "invalid status",
		ErrorStatusInvalidInput:         "Invalid request payload",
		ErrorStatusMalformedEmail:       "Invalid email address",
		ErrorStatusMalformedUsername:    "Invalid username",
		ErrorStatusMalformedPassword:    "Password must be at least 8 characters",
		ErrorStatusDuplicateEmail:       "Email already registered",
		ErrorStatusDuplicateUsername:    "Username already taken",
		ErrorStatusInvalidCredentials:   "Invalid email or password",
		ErrorStatusUserInactive:         "User account is inactive",
		ErrorStatusNotLoggedIn:          "Not authenticated",
		ErrorStatusInvalidToken:         "Could not validate credentials",
		ErrorStatusInvalidResetToken:    "Invalid or expired token",
		ErrorStatusIncorrectPassword:    "Incorrect current password",
		ErrorStatusUserNotFound:         "User not found",
		ErrorStatusPostNotFound:         "Post not found",
		ErrorStatusCommentNotFound:      "Comment not found",
		ErrorStatusCategoryNotFound:     "Category not found",
		ErrorStatusTagNotFound:          "Tag not found",
		ErrorStatusDuplicatePostSlug:    "Post with this slug already exists",
		ErrorStatusDuplicateCategory:    "Category with this name already exists",
		ErrorStatusDuplicateTag:         "Tag with this name already exists",
		ErrorStatusCannotEditPost:       "Not authorized to update this post",
		ErrorStatusCannotDeletePost:     "Not authorized to delete this post",
		ErrorStatusCannotEditComment:    "Not authorized to update this comment",
		ErrorStatusCannotDeleteComment:  "Not authorized to delete this comment",
		ErrorStatusCannotApproveComment: "Not authorized to approve comments on this post",
		ErrorStatusCannotDeleteCategory: "Not authorized to delete this category",
		ErrorStatusCannotDeleteTag:      "Not authorized to delete this tag",
	}

	// ErrorHTTPCode converts error status codes to the HTTP status that
	// is returned to the client.
	ErrorHTTPCode = map[ErrorStatusT]int{
		ErrorStatusInvalidInput:         http.StatusBadRequest,
		ErrorStatusMalformedEmail:       http.StatusBadRequest,
		ErrorStatusMalformedUsername:    http.StatusBadRequest,
		ErrorStatusMalformedPassword:    http.StatusBadRequest,
		ErrorStatusDuplicateEmail:       http.StatusBadRequest,
		ErrorStatusDuplicateUsername:    http.StatusBadRequest,
		ErrorStatusInvalidCredentials:   http.StatusUnauthorized,
		ErrorStatusUserInactive:         http.StatusForbidden,
		ErrorStatusNotLoggedIn:          http.StatusUnauthorized,
		ErrorStatusInvalidToken:         http.StatusUnauthorized,
		ErrorStatusInvalidResetToken:    http.StatusBadRequest,
		ErrorStatusIncorrectPassword:    http.StatusBadRequest,
		ErrorStatusUserNotFound:         http.StatusNotFound,
		ErrorStatusPostNotFound:         http.StatusNotFound,
		ErrorStatusCommentNotFound:      http.StatusNotFound,
		ErrorStatusCategoryNotFound:     http.StatusNotFound,
		ErrorStatusTagNotFound:          http.StatusNotFound,
		ErrorStatusDuplicatePostSlug:    http.StatusBadRequest,
		ErrorStatusDuplicateCategory:    http.StatusBadRequest,
		ErrorStatusDuplicateTag:         http.StatusBadRequest,
		ErrorStatusCannotEditPost:       http.StatusForbidden,
		ErrorStatusCannotDeletePost:     http.StatusForbidden,
		ErrorStatusCannotEditComment:    http.StatusForbidden,
		ErrorStatusCannotDeleteComment:  http.StatusForbidden,
		ErrorStatusCannotApproveComment: http.StatusForbidden,
		ErrorStatusCannotDeleteCategory: http.StatusForbidden,
		ErrorStatusCannotDeleteTag:      http.StatusForbidden,
	}
)

// UserError represents an error that is caused by something that the user
// did (malformed input, bad timing, etc).
type UserError struct {
	ErrorCode    ErrorStatusT
	ErrorContext []string
}

// Error satisfies the error interface.
func (e UserError) Error() string {
	return fmt.Sprintf("user error code: %v", e.ErrorCode)
}

// ErrorReply are replies that the server returns when a client request
// fails. The Message field carries the human readable error text from the
// ErrorStatus map. On internal server errors ErrorCode is a UNIX timestamp
// that the server operator can use to correlate the reply with the server
// logs.
type ErrorReply struct {
	ErrorCode    int64    `json:"errorcode"`
	Message      string   `json:"message,omitempty"`
	ErrorContext []string `json:"errorcontext,omitempty"`
}

// StatusReply is the generic reply for operations that produce a status
// message rather than an entity, e.g. the password reset routes. It is also
// the reply body for rate limited requests, with Success set to false.
type StatusReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Version command is used to determine the version of the API this backend
// understands and the route prefix to said API. The call requires no
// authentication.
type Version struct{}

// VersionReply returns information that indicates what version of the
// server is running and the route to the API.
type VersionReply struct {
	Version uint   `json:"version"` // press WWW API version
	Route   string `json:"route"`   // prefix to API calls
	AppName string `json:"app_name"`
	DevMode bool   `json:"dev_mode"`
}

// Policy returns a struct with various maxima. The client shall observe the
// maxima.
type Policy struct{}

// PolicyReply is used to reply to the policy command. It returns the
// validation bounds that the server enforces.
type PolicyReply struct {
	MinPasswordLength       uint `json:"min_password_length"`
	MinUsernameLength       uint `json:"min_username_length"`
	MaxUsernameLength       uint `json:"max_username_length"`
	MaxEmailLength          uint `json:"max_email_length"`
	MaxTitleLength          uint `json:"max_title_length"`
	MaxNameLength           uint `json:"max_name_length"`
	PostsPageSizeDefault    uint `json:"posts_page_size_default"`
	PostsPageSizeMax        uint `json:"posts_page_size_max"`
	CommentsPageSizeDefault uint `json:"comments_page_size_default"`
	CommentsPageSizeMax     uint `json:"comments_page_size_max"`
	TaxonomyPageSizeDefault uint `json:"taxonomy_page_size_default"`
	TaxonomyPageSizeMax     uint `json:"taxonomy_page_size_max"`
}

// User describes a user of the platform. The password hash is server side
// state and is never included.
type User struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	FullName        string `json:"full_name,omitempty"`
	Bio             string `json:"bio,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	IsActive        bool   `json:"is_active"`
	IsVerified      bool   `json:"is_verified"`
	DateAdded       int64  `json:"date_added"`   // UNIX timestamp
	DateUpdated     int64  `json:"date_updated"` // UNIX timestamp
}

// Signup creates a new user account. When both the email and the username
// collide with existing accounts the duplicate email is the error that is
// reported.
type Signup struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	FullName        string `json:"full_name,omitempty"`
	Bio             string `json:"bio,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// SignupReply is the reply to the Signup command. It contains a freshly
// issued access token for the new account.
type SignupReply struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // Always "bearer"
	User        User   `json:"user"`
}

// Signin authenticates a user with their email address and password.
type Signin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninReply is the reply to the Signin command.
type SigninReply struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // Always "bearer"
	User        User   `json:"user"`
}

// ForgotPassword requests a password reset email. The reply is identical
// whether or not the email corresponds to an account.
type ForgotPassword struct {
	Email string `json:"email"`
}

// ResetPassword resets a password using the token from a password reset
// email. Reset tokens are single use; they are invalidated by any
// successful password change.
type ResetPassword struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ChangePassword changes the password of the logged in user. The current
// password must be provided.
type ChangePassword struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// VerifyEmail marks the account email as verified using the token from the
// verification email.
type VerifyEmail struct {
	Token string `json:"token"`
}

// Category describes a post category.
type Category struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	DateAdded   int64  `json:"date_added"`
	DateUpdated int64  `json:"date_updated"`
}

// Tag describes a post tag.
type Tag struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	DateAdded   int64  `json:"date_added"`
	DateUpdated int64  `json:"date_updated"`
}

// Post describes a blog post. Author is always included; Category is only
// included when the post has one.
type Post struct {
	ID               uint64    `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	Content          string    `json:"content"`
	Excerpt          string    `json:"excerpt,omitempty"`
	AuthorID         string    `json:"author_id"`
	CategoryID       uint64    `json:"category_id,omitempty"`
	IsPublished      bool      `json:"is_published"`
	PublishedAt      int64     `json:"published_at,omitempty"`
	FeaturedImageURL string    `json:"featured_image_url,omitempty"`
	ViewCount        uint64    `json:"view_count"`
	DateAdded        int64     `json:"date_added"`
	DateUpdated      int64     `json:"date_updated"`
	Author           User      `json:"author"`
	Category         *Category `json:"category,omitempty"`
	Tags             []Tag     `json:"tags"`
}

// NewPost creates a new blog post. The slug is normalized to URL form
// server side; a slug that normalizes to one that is already in use is
// rejected.
type NewPost struct {
	Title            string   `json:"title"`
	Slug             string   `json:"slug"`
	Content          string   `json:"content"`
	Excerpt          string   `json:"excerpt,omitempty"`
	CategoryID       uint64   `json:"category_id,omitempty"`
	IsPublished      bool     `json:"is_published"`
	FeaturedImageURL string   `json:"featured_image_url,omitempty"`
	TagIDs           []uint64 `json:"tag_ids,omitempty"`
}

// NewPostReply is the reply to the NewPost command.
type NewPostReply struct {
	Post Post `json:"post"`
}

// EditPost updates an existing post. Only the author may edit. Title, slug
// and content are replaced when non-empty; the remaining fields are
// replaced when present in the request.
type EditPost struct {
	Title            string    `json:"title,omitempty"`
	Slug             string    `json:"slug,omitempty"`
	Content          string    `json:"content,omitempty"`
	Excerpt          *string   `json:"excerpt,omitempty"`
	CategoryID       *uint64   `json:"category_id,omitempty"`
	IsPublished      *bool     `json:"is_published,omitempty"`
	FeaturedImageURL *string   `json:"featured_image_url,omitempty"`
	TagIDs           *[]uint64 `json:"tag_ids,omitempty"`
}

// EditPostReply is the reply to the EditPost command.
type EditPostReply struct {
	Post Post `json:"post"`
}

// PostDetailsReply is the reply for the routes that return a single post.
// Fetching a post through either of them counts a view.
type PostDetailsReply struct {
	Post Post `json:"post"`
}

// PostsParams are the query parameters for the routes that return lists of
// posts.
type PostsParams struct {
	Skip       uint64 `schema:"skip"`
	Limit      uint64 `schema:"limit"`
	CategoryID uint64 `schema:"category_id"`
	TagID      uint64 `schema:"tag_id"`
}

// PostsReply is the reply for the routes that return lists of posts.
// Listings are ordered newest first by creation time.
type PostsReply struct {
	Posts []Post `json:"posts"`
}

// Comment describes a comment on a post. Threading is expressed through an
// optional parent comment reference.
type Comment struct {
	ID              uint64 `json:"id"`
	Content         string `json:"content"`
	PostID          uint64 `json:"post_id"`
	AuthorID        string `json:"author_id"`
	ParentCommentID uint64 `json:"parent_comment_id,omitempty"`
	IsApproved      bool   `json:"is_approved"`
	DateAdded       int64  `json:"date_added"`
	DateUpdated     int64  `json:"date_updated"`
	Author          User   `json:"author"`
}

// NewComment creates a comment on a post. Comments await approval by the
// post author before they appear in listings.
type NewComment struct {
	Content         string `json:"content"`
	ParentCommentID uint64 `json:"parent_comment_id,omitempty"`
}

// NewCommentReply is the reply to the NewComment command.
type NewCommentReply struct {
	Comment Comment `json:"comment"`
}

// EditComment updates the content of a comment. Only the author may edit.
type EditComment struct {
	Content string `json:"content"`
}

// EditCommentReply is the reply to the EditComment command.
type EditCommentReply struct {
	Comment Comment `json:"comment"`
}

// CommentDetailsReply is the reply for the route that returns a single
// comment.
type CommentDetailsReply struct {
	Comment Comment `json:"comment"`
}

// ApproveCommentReply is the reply to the approve comment command. Only the
// author of the post the comment was left on may approve it.
type ApproveCommentReply struct {
	Comment Comment `json:"comment"`
}

// CommentsParams are the query parameters for the comment listing route.
type CommentsParams struct {
	Skip  uint64 `schema:"skip"`
	Limit uint64 `schema:"limit"`
}

// CommentsReply is the reply for the comment listing route. Only approved
// comments are included.
type CommentsReply struct {
	Comments []Comment `json:"comments"`
}

// NewCategory creates a post category.
type NewCategory struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// NewCategoryReply is the reply to the NewCategory command.
type NewCategoryReply struct {
	Category Category `json:"category"`
}

// CategoryDetailsReply is the reply for the route that returns a single
// category.
type CategoryDetailsReply struct {
	Category Category `json:"category"`
}

// NewTag creates a post tag.
type NewTag struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// NewTagReply is the reply to the NewTag command.
type NewTagReply struct {
	Tag Tag `json:"tag"`
}

// TagDetailsReply is the reply for the route that returns a single tag.
type TagDetailsReply struct {
	Tag Tag `json:"tag"`
}

// TaxonomyParams are the query parameters for the category and tag listing
// routes.
type TaxonomyParams struct {
	Skip  uint64 `schema:"skip"`
	Limit uint64 `schema:"limit"`
}

// CategoriesReply is the reply for the category listing route.
type CategoriesReply struct {
	Categories []Category `json:"categories"`
}

// TagsReply is the reply for the tag listing route.
type TagsReply struct {
	Tags []Tag `json:"tags"`
}
