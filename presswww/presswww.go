// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"crypto/elliptic"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	v1 "github.com/presshq/press/presswww/api/v1"
	"github.com/presshq/press/presswww/database"
	"github.com/presshq/press/presswww/database/localdb"
	"github.com/presshq/press/presswww/database/mysqldb"
	"github.com/presshq/press/presswww/mail"
	"github.com/presshq/press/presswww/tokens"
	"github.com/presshq/press/util"
	"github.com/presshq/press/util/version"
)

type permission uint

const (
	permissionPublic permission = iota
	permissionLogin

	// jwtKeyLength is the length in bytes of the token signing key.
	jwtKeyLength = 32
)

// presswww application context.
type presswww struct {
	cfg    *config
	router *mux.Router

	db           database.Datastore
	mail         mail.Mailer
	tokens       *tokens.Tokens
	eventManager *eventManager

	// limiter throttles clients that exceed the configured request
	// budget. It is nil when rate limiting is disabled.
	limiter *rateLimiter

	// test is set when running under the test harness. Test mode uses
	// the minimum bcrypt cost so that tests run quickly.
	test bool
}

// getTokenUser resolves the bearer token on the request to the user it was
// issued to. An absent or malformed credential is an authentication
// failure; a valid token whose subject no longer resolves to a user is
// reported as not found instead.
func (p *presswww) getTokenUser(r *http.Request) (*database.User, error) {
	token, err := getBearerToken(r)
	if err != nil {
		log.Debugf("getTokenUser: %v", err)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusNotLoggedIn,
		}
	}

	claims, err := p.tokens.VerifyAccess(token)
	if err != nil {
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidToken,
		}
	}

	id, err := claims.UserID()
	if err != nil {
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidToken,
		}
	}
	log.Tracef("getTokenUser: %v", id)

	u, err := p.db.UserGetByID(id)
	if err != nil {
		if err == database.ErrUserNotFound {
			return nil, v1.UserError{
				ErrorCode: v1.ErrorStatusUserNotFound,
			}
		}
		return nil, err
	}

	return u, nil
}

// RespondWithError returns an HTTP error status to the client. If it's a user
// error, it returns a 4xx HTTP status and the specific user error code. If it's
// an internal server error, it returns 500 and an error code which is also
// outputted to the logs so that it can be correlated later if the user
// files a complaint.
func RespondWithError(w http.ResponseWriter, r *http.Request, userHttpCode int, format string, args ...interface{}) {
	if userErr, ok := args[0].(v1.UserError); ok {
		if userHttpCode == 0 {
			userHttpCode = http.StatusBadRequest
			if c, ok := v1.ErrorHTTPCode[userErr.ErrorCode]; ok {
				userHttpCode = c
			}
		}

		if len(userErr.ErrorContext) == 0 {
			log.Errorf("RespondWithError: %v %v %v",
				remoteAddr(r),
				int64(userErr.ErrorCode),
				v1.ErrorStatus[userErr.ErrorCode])
		} else {
			log.Errorf("RespondWithError: %v %v %v: %v",
				remoteAddr(r),
				int64(userErr.ErrorCode),
				v1.ErrorStatus[userErr.ErrorCode],
				strings.Join(userErr.ErrorContext, ", "))
		}

		util.RespondWithJSON(w, userHttpCode,
			v1.ErrorReply{
				ErrorCode:    int64(userErr.ErrorCode),
				Message:      v1.ErrorStatus[userErr.ErrorCode],
				ErrorContext: userErr.ErrorContext,
			})
		return
	}

	errorCode := time.Now().Unix()
	ec := fmt.Sprintf("%v %v %v %v Internal error %v: ", remoteAddr(r),
		r.Method, r.URL, r.Proto, errorCode)
	log.Errorf(ec+format, args...)

	// If one of the args is a pkg/errors error then the stack trace is
	// pulled out of the error itself, otherwise the stack trace points
	// to this function.
	stack := string(debug.Stack())
	for _, v := range args {
		err, ok := v.(error)
		if !ok {
			continue
		}
		if s, ok := util.StackTrace(err); ok {
			stack = s
			break
		}
	}
	log.Errorf("Stacktrace (NOT A REAL CRASH): %v", stack)

	util.RespondWithJSON(w, http.StatusInternalServerError,
		v1.ErrorReply{
			ErrorCode: errorCode,
		})
}

// handleVersion is an HTTP GET to determine what version and API route this
// backend is using.
func (p *presswww) handleVersion(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleVersion")

	versionReply, err := json.Marshal(v1.VersionReply{
		Version: v1.PressWWWAPIVersion,
		Route:   v1.APIRoute,
		AppName: "presswww",
		DevMode: p.cfg.DevMode,
	})
	if err != nil {
		RespondWithError(w, r, 0, "handleVersion: Marshal %v", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Add("Strict-Transport-Security",
		"max-age=63072000; includeSubDomains")
	w.WriteHeader(http.StatusOK)
	w.Write(versionReply)
}

// handlePolicy returns details on how to interact with the server.
func (p *presswww) handlePolicy(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handlePolicy")

	util.RespondWithJSON(w, http.StatusOK, v1.PolicyReply{
		MinPasswordLength:       v1.PolicyMinPasswordLength,
		MinUsernameLength:       v1.PolicyMinUsernameLength,
		MaxUsernameLength:       v1.PolicyMaxUsernameLength,
		MaxEmailLength:          v1.PolicyMaxEmailLength,
		MaxTitleLength:          v1.PolicyMaxTitleLength,
		MaxNameLength:           v1.PolicyMaxNameLength,
		PostsPageSizeDefault:    v1.PolicyPostsPageSizeDefault,
		PostsPageSizeMax:        v1.PolicyPostsPageSizeMax,
		CommentsPageSizeDefault: v1.PolicyCommentsPageSizeDefault,
		CommentsPageSizeMax:     v1.PolicyCommentsPageSizeMax,
		TaxonomyPageSizeDefault: v1.PolicyTaxonomyPageSizeDefault,
		TaxonomyPageSizeMax:     v1.PolicyTaxonomyPageSizeMax,
	})
}

// handleNotFound is a generic handler for an invalid route.
func (p *presswww) handleNotFound(w http.ResponseWriter, r *http.Request) {
	// Log incoming connection
	log.Debugf("Invalid route: %v %v %v %v", remoteAddr(r), r.Method, r.URL,
		r.Proto)

	// Trace incoming request
	log.Tracef("%v", newLogClosure(func() string {
		trace, err := httputil.DumpRequest(r, true)
		if err != nil {
			trace = []byte(fmt.Sprintf("logging: "+
				"DumpRequest %v", err))
		}
		return string(trace)
	}))

	util.RespondWithJSON(w, http.StatusNotFound, v1.ErrorReply{})
}

// addRoute sets up a handler for a specific method+route. Routes are
// registered for OPTIONS as well so that the cors middleware can answer
// preflight requests.
func (p *presswww) addRoute(method string, route string, handler http.HandlerFunc, perm permission) {
	fullRoute := v1.APIRoute + route

	switch perm {
	case permissionLogin:
		handler = logging(p.isLoggedIn(handler))
	default:
		handler = logging(handler)
	}

	// All handlers pick up the cross origin headers, are rate limited,
	// recover from panics, and need to close the body.
	handler = closeBody(recoverMiddleware(p.cors(p.rateLimit(handler))))

	p.router.StrictSlash(true).HandleFunc(fullRoute, handler).
		Methods(method, http.MethodOptions)
}

// setPressWWWRoutes sets up the routes that are not tied to a resource
// group.
func (p *presswww) setPressWWWRoutes() {
	p.router.HandleFunc("/", closeBody(logging(p.handleVersion))).
		Methods(http.MethodGet)
	p.router.NotFoundHandler = closeBody(p.handleNotFound)

	p.addRoute(http.MethodGet, v1.RouteVersion, p.handleVersion,
		permissionPublic)
	p.addRoute(http.MethodGet, v1.RoutePolicy, p.handlePolicy,
		permissionPublic)
}

func _main() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	loadedCfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("Could not load configuration file: %v", err)
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	log.Infof("Version : %v", version.String())
	log.Infof("Network : %v", loadedCfg.Net)
	log.Infof("Home dir: %v", loadedCfg.HomeDir)

	if loadedCfg.MailHost == "" {
		log.Infof("Email   : DISABLED")
	}
	if loadedCfg.RateLimit == 0 {
		log.Infof("Rate limit: DISABLED")
	}

	// Create the data directory in case it does not exist.
	err = os.MkdirAll(loadedCfg.DataDir, 0700)
	if err != nil {
		return err
	}

	// Generate the TLS cert and key file if both don't already
	// exist.
	if !fileExists(loadedCfg.HTTPSKey) &&
		!fileExists(loadedCfg.HTTPSCert) {
		log.Infof("Generating HTTPS keypair...")

		err := util.GenCertPair(elliptic.P256(), "presswww",
			loadedCfg.HTTPSCert, loadedCfg.HTTPSKey)
		if err != nil {
			return fmt.Errorf("unable to create https keypair: %v",
				err)
		}

		log.Infof("HTTPS keypair created...")
	}

	// Setup application context.
	p := &presswww{
		cfg: loadedCfg,
	}

	// Setup email client
	mailer, err := mail.New(loadedCfg.MailHost, loadedCfg.MailUser,
		loadedCfg.MailPass, loadedCfg.MailAddress, loadedCfg.SMTPCert,
		loadedCfg.SMTPSkipVerify)
	if err != nil {
		return fmt.Errorf("new mail client: %v", err)
	}
	p.mail = mailer

	// Setup datastore
	log.Infof("Datastore: %v", loadedCfg.DBType)

	switch loadedCfg.DBType {
	case dbTypeLevelDB:
		db, err := localdb.New(loadedCfg.DataDir)
		if err != nil {
			return err
		}
		p.db = db

	case dbTypeMySQL:
		db, err := mysqldb.New(loadedCfg.DBHost, loadedCfg.DBUser,
			loadedCfg.DBPass, loadedCfg.Net)
		switch err {
		case nil:
			// Datastore is ready; continue
		case database.ErrNoVersionRecord:
			// The tables have not been built yet.
			log.Infof("Building database tables...")
			err := db.Setup()
			if err != nil {
				return fmt.Errorf("setup mysql tables: %v", err)
			}
		default:
			return fmt.Errorf("new mysqldb: %v", err)
		}
		p.db = db

	default:
		return fmt.Errorf("invalid dbtype '%v'", loadedCfg.DBType)
	}

	// Load or create new JWT signing key
	log.Infof("Load JWT key")
	fJWT, err := os.Open(loadedCfg.JWTKeyFile)
	if err != nil {
		if os.IsNotExist(err) {
			key, err := util.Random(jwtKeyLength)
			if err != nil {
				return err
			}

			// Persist key
			fJWT, err = os.OpenFile(loadedCfg.JWTKeyFile,
				os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
			if err != nil {
				return err
			}
			_, err = fJWT.Write(key)
			if err != nil {
				return err
			}
			_, err = fJWT.Seek(0, 0)
			if err != nil {
				return err
			}
		} else {
			return err
		}
	}
	jwtKey := make([]byte, jwtKeyLength)
	n, err := fJWT.Read(jwtKey)
	if err != nil {
		return err
	}
	if n != jwtKeyLength {
		return fmt.Errorf("JWT key corrupt")
	}
	fJWT.Close()

	p.tokens = tokens.New(jwtKey,
		time.Duration(loadedCfg.AccessTokenExpiry)*time.Minute)

	// Setup rate limiter
	if loadedCfg.RateLimit > 0 {
		p.limiter = newRateLimiter(int(loadedCfg.RateLimit),
			time.Duration(loadedCfg.RateLimitPeriod)*time.Second)
	}

	// Setup events
	p.eventManager = newEventManager()
	p.setupEventListeners()

	// Setup routes
	p.router = mux.NewRouter()
	p.setPressWWWRoutes()
	p.setUserWWWRoutes()
	p.setPostWWWRoutes()
	p.setCommentWWWRoutes()
	p.setCategoryWWWRoutes()
	p.setTagWWWRoutes()

	// Bind to a port and pass our router in
	listenC := make(chan error)
	for _, listener := range loadedCfg.Listeners {
		listen := listener
		go func() {
			cfg := &tls.Config{
				MinVersion: tls.VersionTLS12,
				CurvePreferences: []tls.CurveID{
					tls.CurveP256, // BLAME CHROME, NOT ME!
					tls.CurveP521,
					tls.X25519},
				PreferServerCipherSuites: true,
				CipherSuites: []uint16{
					tls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA256,
					tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
					tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
					tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
				},
			}
			srv := &http.Server{
				Handler:   p.router,
				Addr:      listen,
				TLSConfig: cfg,
				TLSNextProto: make(map[string]func(*http.Server,
					*tls.Conn, http.Handler)),
			}

			log.Infof("Listen: %v", listen)
			listenC <- srv.ListenAndServeTLS(loadedCfg.HTTPSCert,
				loadedCfg.HTTPSKey)
		}()
	}

	// Tell user we are ready to go.
	log.Infof("Start of day")

	// Setup OS signals
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case sig := <-sigs:
			log.Infof("Terminating with %v", sig)
			goto done
		case err := <-listenC:
			log.Errorf("%v", err)
			goto done
		}
	}
done:

	log.Infof("Exiting")

	// Close datastore connection
	p.db.Close()

	return nil
}

func main() {
	err := _main()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
