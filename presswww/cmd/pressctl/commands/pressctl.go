package commands

import (
	"github.com/presshq/press/presswww/cmd/pressctl/client"
	"github.com/presshq/press/presswww/cmd/pressctl/config"
)

type Options struct {
	// cli flags
	Host    func(string) error `long:"host" description:"presswww host"`
	Json    func()             `short:"j" long:"json" description:"Print raw JSON"`
	Verbose func()             `short:"v" long:"verbose" description:"Print verbose output"`

	// cli commands
	ApproveComment ApprovecommentCmd `command:"approvecomment" description:"(post author only) approve a comment"`
	Categories     CategoriesCmd     `command:"categories" description:"fetch all categories"`
	ChangePassword ChangepasswordCmd `command:"changepassword" description:"change the password for the currently signed in user"`
	Comments       CommentsCmd       `command:"comments" description:"fetch a post's approved comments"`
	DeleteCategory DeletecategoryCmd `command:"deletecategory" description:"delete an unused category"`
	DeleteComment  DeletecommentCmd  `command:"deletecomment" description:"(author only) delete a comment"`
	DeletePost     DeletepostCmd     `command:"deletepost" description:"(author only) delete a post"`
	DeleteTag      DeletetagCmd      `command:"deletetag" description:"delete an unused tag"`
	EditComment    EditcommentCmd    `command:"editcomment" description:"(author only) edit a comment"`
	EditPost       EditpostCmd       `command:"editpost" description:"(author only) edit a post"`
	ForgotPassword ForgotpasswordCmd `command:"forgotpassword" description:"request a password reset email"`
	GetCategory    GetcategoryCmd    `command:"getcategory" description:"fetch a category"`
	GetComment     GetcommentCmd     `command:"getcomment" description:"fetch a comment"`
	GetPost        GetpostCmd        `command:"getpost" description:"fetch a post"`
	GetPostBySlug  GetpostbyslugCmd  `command:"getpostbyslug" description:"fetch a post by its slug"`
	GetTag         GettagCmd         `command:"gettag" description:"fetch a tag"`
	NewCategory    NewcategoryCmd    `command:"newcategory" description:"create a new category"`
	NewComment     NewcommentCmd     `command:"newcomment" description:"comment on a post"`
	NewPost        NewpostCmd        `command:"newpost" description:"submit a new post"`
	NewTag         NewtagCmd         `command:"newtag" description:"create a new tag"`
	Policy         PolicyCmd         `command:"policy" description:"fetch server policy"`
	Posts          PostsCmd          `command:"posts" description:"fetch the published posts"`
	ResetPassword  ResetpasswordCmd  `command:"resetpassword" description:"reset a password using an emailed reset token"`
	SearchPosts    SearchpostsCmd    `command:"searchposts" description:"search the published posts"`
	Signin         SigninCmd         `command:"signin" description:"sign in to Press and save the access token"`
	Signout        SignoutCmd        `command:"signout" description:"discard the saved access token"`
	Signup         SignupCmd         `command:"signup" description:"create a new Press user"`
	Tags           TagsCmd           `command:"tags" description:"fetch all tags"`
	UserPosts      UserpostsCmd      `command:"userposts" description:"fetch all posts authored by a specific user"`
	VerifyEmail    VerifyemailCmd    `command:"verifyemail" description:"verify a user's email address"`
	Version        VersionCmd        `command:"version" description:"fetch server version info"`
}

// registers callbacks for cli flags
func RegisterCallbacks() {
	Opts.Host = func(host string) error {
		return config.UpdateHost(host)
	}

	Opts.Json = func() {
		config.PrintJson = true
	}

	Opts.Verbose = func() {
		config.Verbose = true
	}
}

var Opts Options
var Ctx *client.Ctx
