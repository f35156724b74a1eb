package config

import (
	"fmt"
	"hash/fnv"
	"io/ioutil"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/presshq/press/presswww/sharedconfig"
)

var (
	defaultHost    = "https://127.0.0.1:8443"
	defaultHomeDir = filepath.Join(sharedconfig.DefaultHomeDir, "ctl")

	Host    = defaultHost
	HomeDir = cleanAndExpandPath(defaultHomeDir)

	tokenFile   string
	AccessToken string
	PrintJson   bool
	Verbose     bool
)

func stringToHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprint(h.Sum32())
}

func setHost(h string) error {
	if !strings.HasPrefix(h, "http://") && !strings.HasPrefix(h, "https://") {
		return fmt.Errorf("Host must begin with http:// or https://")
	}

	Host = h
	return nil
}

// create an access token filename that is unique for each host.  This makes
// it possible to interact with multiple hosts simultaneously.
func setTokenFile(host string) {
	tokenFilename := "token_" + stringToHash(host)
	tokenFile = filepath.Join(HomeDir, tokenFilename)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		usr, _ := user.Current()
		path = strings.Replace(path, "~", usr.HomeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}

	return true
}

func Load() error {
	// create home directory if it doesn't already exist
	err := os.MkdirAll(HomeDir, 0700)
	if err != nil {
		return err
	}

	// load access token
	setTokenFile(Host)
	if fileExists(tokenFile) {
		AccessToken, err = loadAccessToken()
		if err != nil {
			return err
		}
	}

	return nil
}

func UpdateHost(host string) error {
	err := setHost(host)
	if err != nil {
		return err
	}

	setTokenFile(host)
	AccessToken = ""
	if fileExists(tokenFile) {
		AccessToken, err = loadAccessToken()
		if err != nil {
			return err
		}
	}

	return nil
}

func SaveAccessToken(token string) error {
	err := ioutil.WriteFile(tokenFile, []byte(token), 0600)
	if err != nil {
		return err
	}

	AccessToken = token
	fmt.Printf("Access token saved to: %v\n", tokenFile)
	return nil
}

func loadAccessToken() (string, error) {
	b, err := ioutil.ReadFile(tokenFile)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}

func ClearAccessToken() error {
	AccessToken = ""
	if !fileExists(tokenFile) {
		return nil
	}

	return os.Remove(tokenFile)
}
