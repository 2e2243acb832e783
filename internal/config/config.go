package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Config holds everything the installation pipeline needs to know about the target device.
type Config struct {
	// ReleaseURL is the folder the release artifacts are downloaded from.
	ReleaseURL string `yaml:"release_url"`
	// InstallPath is where the WG Display binary is placed. Running copies are
	// found by base name, of which Linux reports only the first 15 characters.
	InstallPath string `yaml:"install_path"`
	// StartupFile is the login shell startup file patched to launch the display.
	StartupFile string `yaml:"startup_file"`
	// StartupLines are appended to StartupFile unless already present.
	StartupLines []string `yaml:"startup_lines"`
	// Hostname is written to /etc/hostname.
	Hostname string `yaml:"hostname"`
	// Package is installed with the system package manager.
	Package string `yaml:"package"`
	// AutologinUser is logged in on the console without a password prompt.
	AutologinUser string `yaml:"autologin_user"`
	// AutologinOverride is the getty service override written for autologin.
	AutologinOverride string `yaml:"autologin_override"`
	// RebootDelay is the pause before the device restarts.
	RebootDelay time.Duration `yaml:"reboot_delay"`
	// DownloadTimeout bounds the artifact download.
	DownloadTimeout time.Duration `yaml:"download_timeout"`
	// Checksums maps artifact names to hex-encoded SHA-256 digests.
	// Artifacts without an entry are installed unverified.
	Checksums map[string]string `yaml:"artifact_sha256,omitempty"`
	// Machine overrides the detected machine identifier (e.g. "armv7l").
	Machine string `yaml:"machine,omitempty"`
	// SkipSudo runs system commands without sudo, e.g. when already root.
	SkipSudo bool `yaml:"skip_sudo,omitempty"`
}

const (
	// DefaultConfigFilename is the settings file looked up in the working directory.
	DefaultConfigFilename = "wgdisplay-installer.yaml"

	// DefaultReleaseURL points at the latest published WG Display release.
	DefaultReleaseURL = "https://github.com/eliabieri/wg_display/releases/latest/download"

	// DefaultInstallPath is the location of the display binary on the device.
	DefaultInstallPath = "/home/pi/wgdisplay"

	// DefaultStartupFile is the login shell startup file of the pi user.
	DefaultStartupFile = "/home/pi/.bashrc"

	// DefaultHostname makes the dashboard reachable as wgdisplay.local.
	DefaultHostname = "wgdisplay"

	// DefaultPackage provides the firewall tooling used by the startup file.
	DefaultPackage = "iptables"

	// DefaultAutologinUser is the stock Raspberry Pi OS user.
	DefaultAutologinUser = "pi"

	// DefaultAutologinOverride is the systemd drop-in enabling console autologin.
	DefaultAutologinOverride = "/etc/systemd/system/getty@tty1.service.d/autologin.conf"

	// DefaultRebootDelay is the pause before the device restarts.
	DefaultRebootDelay = 5 * time.Second

	// DefaultDownloadTimeout bounds the release download.
	DefaultDownloadTimeout = 5 * time.Minute

	// DefaultDashboardPort is the port the display's web dashboard listens on.
	DefaultDashboardPort = 8000

	// DefaultFilePermissions is the permission for saved settings files.
	DefaultFilePermissions = 0o600

	// maxHostnameLength is the label limit from RFC 1123.
	maxHostnameLength = 63
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errInvalidHostname is returned for hostnames that are not a single RFC 1123 label.
	errInvalidHostname = errors.New("invalid hostname")
	// errInvalidChecksum is returned for digests that are not hex SHA-256.
	errInvalidChecksum = errors.New("invalid sha256 checksum")
	// errEmptyField is returned when a field that cannot be defaulted is blank.
	errEmptyField = errors.New("field must not be empty")

	hostnamePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
)

// Default returns the settings for a stock Raspberry Pi OS image.
func Default() *Config {
	cfg := new(Config)

	// Defaults cannot fail validation.
	_ = Validate(cfg)

	return cfg
}

// DefaultStartupLines returns the commands appended to the startup file:
// a port 80 redirect to the dashboard and the display launch itself.
func DefaultStartupLines(installPath string) []string {
	return []string{
		fmt.Sprintf("sudo iptables -t nat -A PREROUTING -p tcp --dport 80 -j REDIRECT --to-port %d",
			DefaultDashboardPort),
		installPath,
	}
}

// Load reads configuration from the provided path and validates it.
// A missing file at the default location yields the default settings;
// a missing file elsewhere is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultConfigFilename {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills unset fields with defaults, expands "~" in paths
// and checks the remaining values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	var err error

	for _, field := range []*string{&cfg.InstallPath, &cfg.StartupFile, &cfg.AutologinOverride} {
		if *field, err = homedir.Expand(*field); err != nil {
			return fmt.Errorf("expand path %q: %w", *field, err)
		}
	}

	if len(cfg.StartupLines) == 0 {
		cfg.StartupLines = DefaultStartupLines(cfg.InstallPath)
	}

	if _, err = url.ParseRequestURI(cfg.ReleaseURL); err != nil {
		return fmt.Errorf("invalid release URL: %w", err)
	}

	if len(cfg.Hostname) > maxHostnameLength || !hostnamePattern.MatchString(cfg.Hostname) {
		return fmt.Errorf("%w: %q", errInvalidHostname, cfg.Hostname)
	}

	if strings.TrimSpace(cfg.AutologinUser) == "" {
		return fmt.Errorf("autologin_user: %w", errEmptyField)
	}

	for artifact, sum := range cfg.Checksums {
		if _, err = DecodeChecksum(sum); err != nil {
			return fmt.Errorf("checksum for %s: %w", artifact, err)
		}
	}

	return nil
}

// ChecksumFor returns the decoded digest configured for artifact, or nil.
func (c *Config) ChecksumFor(artifact string) []byte {
	sum, ok := c.Checksums[artifact]
	if !ok {
		return nil
	}

	decoded, err := DecodeChecksum(sum)
	if err != nil {
		return nil
	}

	return decoded
}

// DecodeChecksum parses a hex-encoded SHA-256 digest.
func DecodeChecksum(sum string) ([]byte, error) {
	decoded, err := hex.DecodeString(strings.TrimSpace(sum))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidChecksum, err)
	}

	if len(decoded) != 32 { //nolint:mnd // SHA-256 digest size.
		return nil, fmt.Errorf("%w: got %d bytes", errInvalidChecksum, len(decoded))
	}

	return decoded, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ReleaseURL == "" {
		cfg.ReleaseURL = DefaultReleaseURL
	}

	if cfg.InstallPath == "" {
		cfg.InstallPath = DefaultInstallPath
	}

	if cfg.StartupFile == "" {
		cfg.StartupFile = DefaultStartupFile
	}

	if cfg.Hostname == "" {
		cfg.Hostname = DefaultHostname
	}

	if cfg.Package == "" {
		cfg.Package = DefaultPackage
	}

	if cfg.AutologinUser == "" {
		cfg.AutologinUser = DefaultAutologinUser
	}

	if cfg.AutologinOverride == "" {
		cfg.AutologinOverride = DefaultAutologinOverride
	}

	if cfg.RebootDelay <= 0 {
		cfg.RebootDelay = DefaultRebootDelay
	}

	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = DefaultDownloadTimeout
	}
}
