package client

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/gorilla/schema"

	"github.com/presshq/press/presswww/cmd/pressctl/config"
)

type Ctx struct {
	client *http.Client
}

func NewClient(skipVerify bool) (*Ctx, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: skipVerify,
	}
	tr := &http.Transport{
		TLSClientConfig: tlsConfig,
	}
	return &Ctx{
		client: &http.Client{
			Transport: tr,
		}}, nil
}

func (c *Ctx) makeRequest(method, route string, b interface{}) ([]byte, error) {
	var requestBody []byte
	var queryParams string
	if b != nil {
		if method == http.MethodGet {
			// GET requests don't have a request body; instead we will populate
			// the query params.
			form := url.Values{}
			err := schema.NewEncoder().Encode(b, form)
			if err != nil {
				return nil, err
			}

			queryParams = "?" + form.Encode()
		} else {
			var err error
			requestBody, err = json.Marshal(b)
			if err != nil {
				return nil, err
			}
		}
	}

	fullRoute := config.Host + v1.APIRoute + route + queryParams

	// if --verbose flag is used, print everything and pretty print json
	// if --json flag is used, only print the raw json from req and resp bodies
	// if neither flag is used, only print request method and route
	if !config.PrintJson {
		fmt.Printf("Request: %v %v\n", method,
			v1.APIRoute+route+queryParams)
	}
	if config.Verbose && requestBody != nil {
		prettyPrintJSON(b)
	}
	if config.PrintJson && requestBody != nil {
		fmt.Printf("%v\n", string(requestBody))
	}

	req, err := http.NewRequest(method, fullRoute, bytes.NewReader(requestBody))
	if err != nil {
		return nil, err
	}
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if config.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+config.AccessToken)
	}
	r, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		r.Body.Close()
	}()

	responseBody, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	if r.StatusCode < http.StatusOK ||
		r.StatusCode >= http.StatusMultipleChoices {
		var e v1.ErrorReply
		err = json.Unmarshal(responseBody, &e)
		if err == nil && e.ErrorCode != 0 {
			return nil, fmt.Errorf("%v, %v %v", r.StatusCode,
				v1.ErrorStatus[v1.ErrorStatusT(e.ErrorCode)],
				strings.Join(e.ErrorContext, ", "))
		}

		return nil, fmt.Errorf("%v", r.StatusCode)
	}

	if config.Verbose {
		fmt.Printf("Response: %v\n", r.StatusCode)
	}
	if config.PrintJson && len(responseBody) != 0 {
		fmt.Printf("%v\n", string(responseBody))
	}

	return responseBody, nil
}

func (c *Ctx) Version() (*v1.VersionReply, error) {
	responseBody, err := c.makeRequest("GET", v1.RouteVersion, nil)
	if err != nil {
		return nil, err
	}

	var vr v1.VersionReply
	err = json.Unmarshal(responseBody, &vr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal VersionReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(vr)
	}

	return &vr, nil
}

func (c *Ctx) Policy() (*v1.PolicyReply, error) {
	responseBody, err := c.makeRequest("GET", v1.RoutePolicy, nil)
	if err != nil {
		return nil, err
	}

	var pr v1.PolicyReply
	err = json.Unmarshal(responseBody, &pr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal PolicyReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(pr)
	}

	return &pr, nil
}

func (c *Ctx) Signup(s v1.Signup) (*v1.SignupReply, error) {
	responseBody, err := c.makeRequest("POST", v1.RouteSignup, s)
	if err != nil {
		return nil, err
	}

	var sr v1.SignupReply
	err = json.Unmarshal(responseBody, &sr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal SignupReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(sr)
	}

	return &sr, nil
}

func (c *Ctx) Signin(email, password string) (*v1.SigninReply, error) {
	s := v1.Signin{
		Email:    email,
		Password: password,
	}

	responseBody, err := c.makeRequest("POST", v1.RouteSignin, s)
	if err != nil {
		return nil, err
	}

	var sr v1.SigninReply
	err = json.Unmarshal(responseBody, &sr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal SigninReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(sr)
	}

	return &sr, nil
}

func (c *Ctx) ForgotPassword(email string) (*v1.StatusReply, error) {
	fp := v1.ForgotPassword{
		Email: email,
	}

	responseBody, err := c.makeRequest("POST", v1.RouteForgotPassword, fp)
	if err != nil {
		return nil, err
	}

	var sr v1.StatusReply
	err = json.Unmarshal(responseBody, &sr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal StatusReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(sr)
	}

	return &sr, nil
}

func (c *Ctx) ResetPassword(token, newPassword string) (*v1.StatusReply, error) {
	rp := v1.ResetPassword{
		Token:       token,
		NewPassword: newPassword,
	}

	responseBody, err := c.makeRequest("POST", v1.RouteResetPassword, rp)
	if err != nil {
		return nil, err
	}

	var sr v1.StatusReply
	err = json.Unmarshal(responseBody, &sr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal StatusReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(sr)
	}

	return &sr, nil
}

func (c *Ctx) ChangePassword(oldPassword, newPassword string) (*v1.StatusReply, error) {
	cp := v1.ChangePassword{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}

	responseBody, err := c.makeRequest("POST", v1.RouteChangePassword, cp)
	if err != nil {
		return nil, err
	}

	var sr v1.StatusReply
	err = json.Unmarshal(responseBody, &sr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal StatusReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(sr)
	}

	return &sr, nil
}

func (c *Ctx) VerifyEmail(token string) (*v1.StatusReply, error) {
	ve := v1.VerifyEmail{
		Token: token,
	}

	responseBody, err := c.makeRequest("POST", v1.RouteVerifyEmail, ve)
	if err != nil {
		return nil, err
	}

	var sr v1.StatusReply
	err = json.Unmarshal(responseBody, &sr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal StatusReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(sr)
	}

	return &sr, nil
}

func (c *Ctx) NewPost(np v1.NewPost) (*v1.NewPostReply, error) {
	responseBody, err := c.makeRequest("POST", v1.RoutePosts, np)
	if err != nil {
		return nil, err
	}

	var npr v1.NewPostReply
	err = json.Unmarshal(responseBody, &npr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal NewPostReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(npr)
	}

	return &npr, nil
}

func (c *Ctx) GetPost(postID uint64) (*v1.PostDetailsReply, error) {
	route := "/posts/" + strconv.FormatUint(postID, 10)
	responseBody, err := c.makeRequest("GET", route, nil)
	if err != nil {
		return nil, err
	}

	var pdr v1.PostDetailsReply
	err = json.Unmarshal(responseBody, &pdr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal PostDetailsReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(pdr)
	}

	return &pdr, nil
}

func (c *Ctx) GetPostBySlug(slug string) (*v1.PostDetailsReply, error) {
	route := "/posts/slug/" + url.PathEscape(slug)
	responseBody, err := c.makeRequest("GET", route, nil)
	if err != nil {
		return nil, err
	}

	var pdr v1.PostDetailsReply
	err = json.Unmarshal(responseBody, &pdr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal PostDetailsReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(pdr)
	}

	return &pdr, nil
}

func (c *Ctx) Posts(pp v1.PostsParams) (*v1.PostsReply, error) {
	responseBody, err := c.makeRequest("GET", v1.RoutePosts, pp)
	if err != nil {
		return nil, err
	}

	var pr v1.PostsReply
	err = json.Unmarshal(responseBody, &pr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal PostsReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(pr)
	}

	return &pr, nil
}

func (c *Ctx) UserPosts(userID string, pp v1.PostsParams) (*v1.PostsReply, error) {
	route := "/posts/user/" + userID
	responseBody, err := c.makeRequest("GET", route, pp)
	if err != nil {
		return nil, err
	}

	var pr v1.PostsReply
	err = json.Unmarshal(responseBody, &pr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal PostsReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(pr)
	}

	return &pr, nil
}

func (c *Ctx) SearchPosts(query string, pp v1.PostsParams) (*v1.PostsReply, error) {
	route := "/posts/search/" + url.PathEscape(query)
	responseBody, err := c.makeRequest("GET", route, pp)
	if err != nil {
		return nil, err
	}

	var pr v1.PostsReply
	err = json.Unmarshal(responseBody, &pr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal PostsReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(pr)
	}

	return &pr, nil
}

func (c *Ctx) EditPost(postID uint64, ep v1.EditPost) (*v1.EditPostReply, error) {
	route := "/posts/" + strconv.FormatUint(postID, 10)
	responseBody, err := c.makeRequest("PUT", route, ep)
	if err != nil {
		return nil, err
	}

	var epr v1.EditPostReply
	err = json.Unmarshal(responseBody, &epr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal EditPostReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(epr)
	}

	return &epr, nil
}

func (c *Ctx) DeletePost(postID uint64) error {
	route := "/posts/" + strconv.FormatUint(postID, 10)
	_, err := c.makeRequest("DELETE", route, nil)
	return err
}

func (c *Ctx) NewComment(postID uint64, nc v1.NewComment) (*v1.NewCommentReply, error) {
	route := "/comments/post/" + strconv.FormatUint(postID, 10)
	responseBody, err := c.makeRequest("POST", route, nc)
	if err != nil {
		return nil, err
	}

	var ncr v1.NewCommentReply
	err = json.Unmarshal(responseBody, &ncr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal NewCommentReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(ncr)
	}

	return &ncr, nil
}

func (c *Ctx) GetComment(commentID uint64) (*v1.CommentDetailsReply, error) {
	route := "/comments/" + strconv.FormatUint(commentID, 10)
	responseBody, err := c.makeRequest("GET", route, nil)
	if err != nil {
		return nil, err
	}

	var cdr v1.CommentDetailsReply
	err = json.Unmarshal(responseBody, &cdr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal CommentDetailsReply: %v",
			err)
	}

	if config.Verbose {
		prettyPrintJSON(cdr)
	}

	return &cdr, nil
}

func (c *Ctx) Comments(postID uint64, cp v1.CommentsParams) (*v1.CommentsReply, error) {
	route := "/comments/post/" + strconv.FormatUint(postID, 10)
	responseBody, err := c.makeRequest("GET", route, cp)
	if err != nil {
		return nil, err
	}

	var cr v1.CommentsReply
	err = json.Unmarshal(responseBody, &cr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal CommentsReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(cr)
	}

	return &cr, nil
}

func (c *Ctx) EditComment(commentID uint64, ec v1.EditComment) (*v1.EditCommentReply, error) {
	route := "/comments/" + strconv.FormatUint(commentID, 10)
	responseBody, err := c.makeRequest("PUT", route, ec)
	if err != nil {
		return nil, err
	}

	var ecr v1.EditCommentReply
	err = json.Unmarshal(responseBody, &ecr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal EditCommentReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(ecr)
	}

	return &ecr, nil
}

func (c *Ctx) DeleteComment(commentID uint64) error {
	route := "/comments/" + strconv.FormatUint(commentID, 10)
	_, err := c.makeRequest("DELETE", route, nil)
	return err
}

func (c *Ctx) ApproveComment(commentID uint64) (*v1.ApproveCommentReply, error) {
	route := "/comments/" + strconv.FormatUint(commentID, 10) + "/approve"
	responseBody, err := c.makeRequest("POST", route, nil)
	if err != nil {
		return nil, err
	}

	var acr v1.ApproveCommentReply
	err = json.Unmarshal(responseBody, &acr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal ApproveCommentReply: %v",
			err)
	}

	if config.Verbose {
		prettyPrintJSON(acr)
	}

	return &acr, nil
}

func (c *Ctx) NewCategory(name, slug, description string) (*v1.NewCategoryReply, error) {
	nc := v1.NewCategory{
		Name:        name,
		Slug:        slug,
		Description: description,
	}

	responseBody, err := c.makeRequest("POST", v1.RouteCategories, nc)
	if err != nil {
		return nil, err
	}

	var ncr v1.NewCategoryReply
	err = json.Unmarshal(responseBody, &ncr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal NewCategoryReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(ncr)
	}

	return &ncr, nil
}

func (c *Ctx) GetCategory(categoryID uint64) (*v1.CategoryDetailsReply, error) {
	route := "/categories/" + strconv.FormatUint(categoryID, 10)
	responseBody, err := c.makeRequest("GET", route, nil)
	if err != nil {
		return nil, err
	}

	var cdr v1.CategoryDetailsReply
	err = json.Unmarshal(responseBody, &cdr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal CategoryDetailsReply: %v",
			err)
	}

	if config.Verbose {
		prettyPrintJSON(cdr)
	}

	return &cdr, nil
}

func (c *Ctx) Categories(tp v1.TaxonomyParams) (*v1.CategoriesReply, error) {
	responseBody, err := c.makeRequest("GET", v1.RouteCategories, tp)
	if err != nil {
		return nil, err
	}

	var cr v1.CategoriesReply
	err = json.Unmarshal(responseBody, &cr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal CategoriesReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(cr)
	}

	return &cr, nil
}

func (c *Ctx) DeleteCategory(categoryID uint64) error {
	route := "/categories/" + strconv.FormatUint(categoryID, 10)
	_, err := c.makeRequest("DELETE", route, nil)
	return err
}

func (c *Ctx) NewTag(name, slug string) (*v1.NewTagReply, error) {
	nt := v1.NewTag{
		Name: name,
		Slug: slug,
	}

	responseBody, err := c.makeRequest("POST", v1.RouteTags, nt)
	if err != nil {
		return nil, err
	}

	var ntr v1.NewTagReply
	err = json.Unmarshal(responseBody, &ntr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal NewTagReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(ntr)
	}

	return &ntr, nil
}

func (c *Ctx) GetTag(tagID uint64) (*v1.TagDetailsReply, error) {
	route := "/tags/" + strconv.FormatUint(tagID, 10)
	responseBody, err := c.makeRequest("GET", route, nil)
	if err != nil {
		return nil, err
	}

	var tdr v1.TagDetailsReply
	err = json.Unmarshal(responseBody, &tdr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal TagDetailsReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(tdr)
	}

	return &tdr, nil
}

func (c *Ctx) Tags(tp v1.TaxonomyParams) (*v1.TagsReply, error) {
	responseBody, err := c.makeRequest("GET", v1.RouteTags, tp)
	if err != nil {
		return nil, err
	}

	var tr v1.TagsReply
	err = json.Unmarshal(responseBody, &tr)
	if err != nil {
		return nil, fmt.Errorf("Could not unmarshal TagsReply: %v", err)
	}

	if config.Verbose {
		prettyPrintJSON(tr)
	}

	return &tr, nil
}

func (c *Ctx) DeleteTag(tagID uint64) error {
	route := "/tags/" + strconv.FormatUint(tagID, 10)
	_, err := c.makeRequest("DELETE", route, nil)
	return err
}
