// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"github.com/presshq/press/presswww/sharedconfig"
	"github.com/presshq/press/util"
	"github.com/presshq/press/util/version"
)

const (
	defaultLogLevel    = "info"
	defaultLogDirname  = "logs"
	defaultLogFilename = "presswww.log"

	defaultListenPort = "8443"

	defaultMailAddress = "Press <noreply@example.org>"

	// defaultAccessTokenExpiry is the lifetime of issued access tokens
	// in minutes.
	defaultAccessTokenExpiry = 30

	// Rate limiting defaults. A rate limit of 0 disables the limiter.
	defaultRateLimit       = 100
	defaultRateLimitPeriod = 60 // seconds

	// Datastore options
	dbTypeLevelDB = "leveldb"
	dbTypeMySQL   = "mysql"

	defaultDBType = dbTypeLevelDB
	defaultDBHost = "localhost:3306"
	defaultDBUser = "presswww"

	// Network names. The data directory, the log directory, and the
	// MySQL database name are namespaced by network so that a dev
	// instance can run beside a production one.
	netMain = "main"
	netDev  = "dev"
)

var (
	defaultHTTPSKeyFile  = filepath.Join(sharedconfig.DefaultHomeDir, "https.key")
	defaultHTTPSCertFile = filepath.Join(sharedconfig.DefaultHomeDir, "https.cert")
	defaultJWTKeyFile    = filepath.Join(sharedconfig.DefaultHomeDir, "jwt.key")
	defaultLogDir        = filepath.Join(sharedconfig.DefaultHomeDir, defaultLogDirname)

	defaultCORSOrigins = []string{
		"http://localhost:3000",
		"http://localhost:8000",
	}
)

// runServiceCommand is only set to a real function on Windows.  It is used
// to parse and execute service commands specified via the -s flag.
var runServiceCommand func(string) error

// config defines the configuration options for presswww.
//
// See loadConfig for details on the configuration load process.
type config struct {
	HomeDir           string   `short:"A" long:"appdata" description:"Path to application home directory"`
	ShowVersion       bool     `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile        string   `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir           string   `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir            string   `long:"logdir" description:"Directory to log output."`
	DevMode           bool     `long:"devmode" description:"Run in development mode; data is kept separate from the production instance"`
	DebugLevel        string   `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	Listeners         []string `long:"listen" description:"Add an interface/port to listen for connections (default all interfaces port: 8443)"`
	Version           string
	HTTPSCert         string   `long:"httpscert" description:"File containing the https certificate file"`
	HTTPSKey          string   `long:"httpskey" description:"File containing the https certificate key"`
	DBType            string   `long:"dbtype" description:"Datastore choice for users and content {leveldb, mysql}"`
	DBHost            string   `long:"dbhost" description:"MySQL host:port"`
	DBUser            string   `long:"dbuser" description:"MySQL user name"`
	DBPass            string   `long:"dbpass" description:"MySQL password"`
	JWTKeyFile        string   `long:"jwtkey" description:"File containing the JWT signing key"`
	AccessTokenExpiry uint     `long:"tokenexpiry" description:"Access token expiry in minutes"`
	MailHost          string   `long:"mailhost" description:"Email server address in this format: <host>:<port>"`
	MailUser          string   `long:"mailuser" description:"Email server username"`
	MailPass          string   `long:"mailpass" description:"Email server password"`
	MailAddress       string   `long:"mailaddress" description:"Email address for outgoing email in the format: name <address>"`
	SMTPCert          string   `long:"smtpcert" description:"File containing the smtp certificate file"`
	SMTPSkipVerify    bool     `long:"smtpskipverify" description:"Skip SMTP TLS cert verification. Will only skip if SMTPCert is empty"`
	WebServerAddress  string   `long:"webserveraddress" description:"Address for the Press web frontend; it should have this format: <scheme>://<host>[:<port>]"`
	RateLimit         uint     `long:"ratelimit" description:"Max requests per client address per rate limit period; 0 disables rate limiting"`
	RateLimitPeriod   uint     `long:"ratelimitperiod" description:"Rate limit period in seconds"`
	CORSOrigins       []string `long:"corsorigin" description:"Origin that is allowed to make cross origin requests; may be specified multiple times"`

	// Net is the active network name. It is derived from the devmode
	// setting and is not directly configurable.
	Net string
}

// serviceOptions defines the configuration options for the rpc as a service
// on Windows.
type serviceOptions struct {
	ServiceCommand string `short:"s" long:"service" description:"Service command {install, remove, start, stop}"`
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Nothing to do when no path is given.
	if path == "" {
		return path
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows cmd.exe-style
	// %VARIABLE%, but the variables can still be expanded via POSIX-style
	// $VARIABLE.
	path = os.ExpandEnv(path)

	if !strings.HasPrefix(path, "~") {
		return filepath.Clean(path)
	}

	// Expand initial ~ to the current user's home directory, or ~otheruser
	// to otheruser's home directory.  On Windows, both forward and backward
	// slashes can be used.
	path = path[1:]

	var pathSeparators string
	if runtime.GOOS == "windows" {
		pathSeparators = string(os.PathSeparator) + "/"
	} else {
		pathSeparators = string(os.PathSeparator)
	}

	userName := ""
	if i := strings.IndexAny(path, pathSeparators); i != -1 {
		userName = path[:i]
		path = path[i:]
	}

	homeDir := ""
	var u *user.User
	var err error
	if userName == "" {
		u, err = user.Current()
	} else {
		u, err = user.Lookup(userName)
	}
	if err == nil {
		homeDir = u.HomeDir
	}
	// Fallback to CWD if user lookup fails or user has no home directory.
	if homeDir == "" {
		homeDir = "."
	}

	return filepath.Join(homeDir, path)
}

// validLogLevel returns whether or not logLevel is a valid debug log level.
func validLogLevel(logLevel string) bool {
	switch logLevel {
	case "trace":
		fallthrough
	case "debug":
		fallthrough
	case "info":
		fallthrough
	case "warn":
		fallthrough
	case "error":
		fallthrough
	case "critical":
		return true
	}
	return false
}

// supportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func supportedSubsystems() []string {
	// Convert the subsystemLoggers map keys to a slice.
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}

	// Sort the subsytems for stable display.
	sort.Strings(subsystems)
	return subsystems
}

// parseAndSetDebugLevels attempts to parse the specified debug level and set
// the levels accordingly.  An appropriate error is returned if anything is
// invalid.
func parseAndSetDebugLevels(debugLevel string) error {
	// When the specified string doesn't have any delimters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		// Validate debug log level.
		if !validLogLevel(debugLevel) {
			str := "The specified debug level [%v] is invalid"
			return fmt.Errorf(str, debugLevel)
		}

		// Change the logging level for all subsystems.
		setLogLevels(debugLevel)

		return nil
	}

	// Split the specified string into subsystem/level pairs while detecting
	// issues and update the log levels accordingly.
	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			str := "The specified debug level contains an invalid " +
				"subsystem/level pair [%v]"
			return fmt.Errorf(str, logLevelPair)
		}

		// Extract the specified subsystem and log level.
		fields := strings.Split(logLevelPair, "=")
		subsysID, logLevel := fields[0], fields[1]

		// Validate subsystem.
		if _, exists := subsystemLoggers[subsysID]; !exists {
			str := "The specified subsystem [%v] is invalid -- " +
				"supported subsytems %v"
			return fmt.Errorf(str, subsysID, supportedSubsystems())
		}

		// Validate log level.
		if !validLogLevel(logLevel) {
			str := "The specified debug level [%v] is invalid"
			return fmt.Errorf(str, logLevel)
		}

		setLogLevel(subsysID, logLevel)
	}

	return nil
}

// removeDuplicateAddresses returns a new slice with all duplicate entries in
// addrs removed.
func removeDuplicateAddresses(addrs []string) []string {
	result := make([]string, 0, len(addrs))
	seen := map[string]struct{}{}
	for _, val := range addrs {
		if _, ok := seen[val]; !ok {
			result = append(result, val)
			seen[val] = struct{}{}
		}
	}
	return result
}

// normalizeAddresses returns a new slice with all the passed peer addresses
// normalized with the given default port, and all duplicates removed.
func normalizeAddresses(addrs []string, defaultPort string) []string {
	for i, addr := range addrs {
		addrs[i] = util.NormalizeAddress(addr, defaultPort)
	}

	return removeDuplicateAddresses(addrs)
}

// filesExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// newConfigParser returns a new command line flags parser.
func newConfigParser(cfg *config, so *serviceOptions, options flags.Options) *flags.Parser {
	parser := flags.NewParser(cfg, options)
	if runtime.GOOS == "windows" {
		parser.AddGroup("Service Options", "Service Options", so)
	}
	return parser
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
// 	1) Start with a default config with sane settings
// 	2) Pre-parse the command line to check for an alternative config file
// 	3) Load configuration file overwriting defaults with any specified options
// 	4) Parse CLI options and overwrite/add any specified options
//
// The above results in presswww functioning properly without any config
// settings while still allowing the user to override settings with config
// files and command line options.  Command line options always take
// precedence.
func loadConfig() (*config, []string, error) {
	// Default config.
	cfg := config{
		HomeDir:           sharedconfig.DefaultHomeDir,
		ConfigFile:        sharedconfig.DefaultConfigFile,
		DebugLevel:        defaultLogLevel,
		DataDir:           sharedconfig.DefaultDataDir,
		LogDir:            defaultLogDir,
		HTTPSKey:          defaultHTTPSKeyFile,
		HTTPSCert:         defaultHTTPSCertFile,
		JWTKeyFile:        defaultJWTKeyFile,
		Version:           version.String(),
		MailAddress:       defaultMailAddress,
		DBType:            defaultDBType,
		DBHost:            defaultDBHost,
		DBUser:            defaultDBUser,
		AccessTokenExpiry: defaultAccessTokenExpiry,
		RateLimit:         defaultRateLimit,
		RateLimitPeriod:   defaultRateLimitPeriod,
	}

	// Service options which are only added on Windows.
	serviceOpts := serviceOptions{}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.  Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := cfg
	preParser := newConfigParser(&preCfg, &serviceOpts, flags.HelpFlag)
	_, err := preParser.Parse()
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(0)
		}
	}

	// Show the version and exit if the version flag was specified.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
	if preCfg.ShowVersion {
		fmt.Printf("%s version %s (Go version %s %s/%s)\n", appName,
			version.String(), runtime.Version(), runtime.GOOS,
			runtime.GOARCH)
		os.Exit(0)
	}

	// Perform service command and exit if specified.  Invalid service
	// commands show an appropriate error.  Only runs on Windows since
	// the runServiceCommand function will be nil when not on Windows.
	if serviceOpts.ServiceCommand != "" && runServiceCommand != nil {
		err := runServiceCommand(serviceOpts.ServiceCommand)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(0)
	}

	// Update the home directory if specified. Since the home directory
	// is updated, other variables need to be updated to reflect the new
	// changes.
	if preCfg.HomeDir != "" {
		cfg.HomeDir, _ = filepath.Abs(preCfg.HomeDir)

		if preCfg.ConfigFile == sharedconfig.DefaultConfigFile {
			cfg.ConfigFile = filepath.Join(cfg.HomeDir,
				sharedconfig.DefaultConfigFilename)
		} else {
			cfg.ConfigFile = preCfg.ConfigFile
		}
		if preCfg.DataDir == sharedconfig.DefaultDataDir {
			cfg.DataDir = filepath.Join(cfg.HomeDir,
				sharedconfig.DefaultDataDirname)
		} else {
			cfg.DataDir = preCfg.DataDir
		}
		if preCfg.HTTPSKey == defaultHTTPSKeyFile {
			cfg.HTTPSKey = filepath.Join(cfg.HomeDir, "https.key")
		} else {
			cfg.HTTPSKey = preCfg.HTTPSKey
		}
		if preCfg.HTTPSCert == defaultHTTPSCertFile {
			cfg.HTTPSCert = filepath.Join(cfg.HomeDir, "https.cert")
		} else {
			cfg.HTTPSCert = preCfg.HTTPSCert
		}
		if preCfg.LogDir == defaultLogDir {
			cfg.LogDir = filepath.Join(cfg.HomeDir, defaultLogDirname)
		} else {
			cfg.LogDir = preCfg.LogDir
		}
		if preCfg.JWTKeyFile == defaultJWTKeyFile {
			cfg.JWTKeyFile = filepath.Join(cfg.HomeDir, "jwt.key")
		} else {
			cfg.JWTKeyFile = preCfg.JWTKeyFile
		}
	}

	// Load additional config from file.
	var configFileError error
	parser := newConfigParser(&cfg, &serviceOpts, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(cfg.ConfigFile)
	if err != nil {
		var e *os.PathError
		if !errors.As(err, &e) {
			fmt.Fprintf(os.Stderr, "Error parsing config "+
				"file: %v\n", err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, nil, err
		}
		configFileError = err
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.Parse()
	if err != nil {
		var e *flags.Error
		if !errors.As(err, &e) || e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return nil, nil, err
	}

	// Create the home directory if it doesn't already exist.
	funcName := "loadConfig"
	err = os.MkdirAll(cfg.HomeDir, 0700)
	if err != nil {
		// Show a nicer error message if it's because a symlink is
		// linked to a directory that does not exist (probably because
		// it's not mounted).
		var e *os.PathError
		if errors.As(err, &e) && os.IsExist(err) {
			if link, lerr := os.Readlink(e.Path); lerr == nil {
				str := "is symlink %s -> %s mounted?"
				err = fmt.Errorf(str, e.Path, link)
			}
		}

		str := "%s: Failed to create home directory: %v"
		err := fmt.Errorf(str, funcName, err)
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	// Assign the active network. The data directory, log directory, and
	// database name are "namespaced" per network so that a dev instance
	// never touches production data.
	cfg.Net = netMain
	if cfg.DevMode {
		cfg.Net = netDev
	}

	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	cfg.DataDir = filepath.Join(cfg.DataDir, cfg.Net)

	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.LogDir = filepath.Join(cfg.LogDir, cfg.Net)

	cfg.HTTPSKey = cleanAndExpandPath(cfg.HTTPSKey)
	cfg.HTTPSCert = cleanAndExpandPath(cfg.HTTPSCert)
	cfg.JWTKeyFile = cleanAndExpandPath(cfg.JWTKeyFile)

	// Validate datastore selection.
	switch cfg.DBType {
	case dbTypeLevelDB:
		// Valid selection; continue

	case dbTypeMySQL:
		// MySQL requires the connection credentials.
		switch {
		case cfg.DBHost == "":
			return nil, nil, fmt.Errorf("dbhost param is required")
		case cfg.DBUser == "":
			return nil, nil, fmt.Errorf("dbuser param is required")
		case cfg.DBPass == "":
			return nil, nil, fmt.Errorf("dbpass param is required")
		}

		_, err := url.Parse(cfg.DBHost)
		if err != nil {
			return nil, nil, fmt.Errorf("parse dbhost: %v", err)
		}

	default:
		return nil, nil, fmt.Errorf("invalid dbtype '%v'; must "+
			"be either leveldb or mysql", cfg.DBType)
	}

	// Validate token expiry.
	if cfg.AccessTokenExpiry == 0 {
		return nil, nil, fmt.Errorf("tokenexpiry must be greater than 0")
	}

	// Validate rate limit settings. A rate limit of 0 disables the
	// limiter so only the period needs to be checked.
	if cfg.RateLimit != 0 && cfg.RateLimitPeriod == 0 {
		return nil, nil, fmt.Errorf("ratelimitperiod must be greater " +
			"than 0")
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	// Initialize log rotation.  After log rotation has been initialized,
	// the logger variables may be used.
	initLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err := fmt.Errorf("%s: %v", funcName, err.Error())
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	// Add the default listener if none were specified. The default
	// listener is all addresses on the listen port.
	if len(cfg.Listeners) == 0 {
		cfg.Listeners = []string{
			net.JoinHostPort("", defaultListenPort),
		}
	}

	// Add default port to all listener addresses if needed and remove
	// duplicate addresses.
	cfg.Listeners = normalizeAddresses(cfg.Listeners, defaultListenPort)

	// Validate mail settings.
	switch {
	case cfg.MailHost == "" && cfg.MailUser == "" &&
		cfg.MailPass == "" && cfg.WebServerAddress == "":
		// Email is disabled; this is ok
	case cfg.MailHost != "" && cfg.MailUser != "" &&
		cfg.MailPass != "" && cfg.WebServerAddress != "":
		// All mail settings have been set; this is ok
	default:
		return nil, nil, fmt.Errorf("either all or none of the " +
			"following config options should be supplied: " +
			"mailhost, mailuser, mailpass, webserveraddress")
	}

	u, err := url.Parse(cfg.MailHost)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to parse mail host: %v",
			err)
	}
	cfg.MailHost = u.String()

	a, err := mail.ParseAddress(cfg.MailAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to parse mail address: %v",
			err)
	}
	cfg.MailAddress = a.String()

	u, err = url.Parse(cfg.WebServerAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to parse web server address: %v",
			err)
	}
	cfg.WebServerAddress = u.String()

	// Validate smtp root cert.
	if cfg.SMTPCert != "" {
		cfg.SMTPCert = cleanAndExpandPath(cfg.SMTPCert)
		if !fileExists(cfg.SMTPCert) {
			return nil, nil, fmt.Errorf("file not found %v",
				cfg.SMTPCert)
		}

		if cfg.SMTPSkipVerify {
			log.Warnf("SMTPCert has been set so SMTPSkipVerify " +
				"is being disregarded.")
			cfg.SMTPSkipVerify = false
		}
	}

	// CORS origins default to the local dev frontends when none were
	// provided.
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = defaultCORSOrigins
	}
	cfg.CORSOrigins = removeDuplicateAddresses(cfg.CORSOrigins)

	// Warn about missing config file only after all other configuration is
	// done.  This prevents the warning on help messages and invalid
	// options.  Note this should go directly before the return.
	if configFileError != nil {
		log.Warnf("%v", configFileError)
	}

	return &cfg, remainingArgs, nil
}
