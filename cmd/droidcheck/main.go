package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
	"gopkg.in/ini.v1"

	"github.com/steelcutops/droidcheck/droidcheck/api"
	"github.com/steelcutops/droidcheck/droidcheck/device"
	"github.com/steelcutops/droidcheck/droidcheck/devicegroup"
	"github.com/steelcutops/droidcheck/droidcheck/sshmanager"
	"github.com/steelcutops/droidcheck/droidcheck/usermanager"
	"github.com/steelcutops/droidcheck/logger"
)

const noUser = -1

type flags struct {
	Concurrency    int
	Debug          bool
	DumpFile       string
	IniFilePath    string
	KeyPassPrompt  bool
	ListPackages   bool
	ListUsers      bool
	ListUserTypes  bool
	LogFileName    string
	PasswordPrompt bool
	SDK            int
	Serials        serialsValue
	ServeAddr      string
	Timeout        time.Duration
	UserID         int
	Username       string
}

type serialsValue []string

func (s *serialsValue) String() string {
	return strings.Join(*s, ",")
}

func (s *serialsValue) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// deviceEntry is one device from the inventory file.
type deviceEntry struct {
	Host   string
	Serial string
	SDK    int
}

func parseFlags(args []string) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("droidcheck", flag.ContinueOnError)
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug log level")
	fs.BoolVar(&f.KeyPassPrompt, "keypass", false, "Prompt for the SSH key passphrase")
	fs.BoolVar(&f.ListPackages, "packages", false, "List installed packages for -user, or the current user")
	fs.BoolVar(&f.ListUsers, "users", false, "Dump every user on the devices")
	fs.BoolVar(&f.ListUserTypes, "usertypes", false, "Dump the user types reported by the devices")
	fs.BoolVar(&f.PasswordPrompt, "password", false, "Prompt for the SSH password")
	fs.DurationVar(&f.Timeout, "timeout", 2*time.Minute, "Timeout for all device operations")
	fs.IntVar(&f.Concurrency, "concurrency", 10, "Maximum number of devices processed at once")
	fs.IntVar(&f.SDK, "sdk", 0, "SDK version; skips detection, required with -dump-file")
	fs.IntVar(&f.UserID, "user", noUser, "Show a single user by ID")
	fs.StringVar(&f.DumpFile, "dump-file", "", "Parse a saved 'dumpsys user' output instead of querying devices")
	fs.StringVar(&f.IniFilePath, "ini", "", "Path to INI file with lab hosts and device serials")
	fs.StringVar(&f.LogFileName, "log", "", "Log file name, stderr when empty")
	fs.StringVar(&f.ServeAddr, "serve", "", "Serve the read-only HTTP API on this address")
	fs.StringVar(&f.Username, "username", "", "Username to use for SSH connections")
	fs.Var(&f.Serials, "serial", "Serial of a device attached to this machine, repeatable")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// readDevicesFromFile loads the device inventory. Each section names the host
// adb runs on; each key is a device serial with an optional SDK override.
//
//	[lab-host-1]
//	R58M123 = 30
//	emulator-5554 =
func readDevicesFromFile(filePath string) ([]deviceEntry, error) {
	// Network serials such as "192.168.1.5:5555" contain a colon.
	cfg, err := ini.LoadSources(ini.LoadOptions{KeyValueDelimiters: "="}, filePath)
	if err != nil {
		return nil, err
	}

	var entries []deviceEntry
	for _, section := range cfg.Sections() {
		host := section.Name()
		if host == ini.DefaultSection {
			host = "localhost"
		}
		for _, key := range section.Keys() {
			entry := deviceEntry{Host: host, Serial: key.Name()}
			if v := strings.TrimSpace(key.Value()); v != "" {
				sdk, err := strconv.Atoi(v)
				if err != nil {
					return nil, fmt.Errorf("%s: invalid SDK %q for %s: %w", filePath, v, key.Name(), err)
				}
				entry.SDK = sdk
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// configureLogger returns the opened log file, or nil when logging to stderr.
func configureLogger(f *flags) (*os.File, error) {
	if f.LogFileName == "" {
		logger.Configure(os.Stderr, f.Debug)
		return nil, nil
	}

	file, err := os.OpenFile(f.LogFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	logger.Configure(file, f.Debug)
	return file, nil
}

func readPasswords(f *flags) (password, keyPass string) {
	log := logger.Default()
	if f.PasswordPrompt {
		fmt.Fprint(os.Stderr, "Enter the password: ")
		passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			log.Error("Failed to read password", "error", err)
		}
		password = string(passwordBytes)
		fmt.Fprintln(os.Stderr)
	}

	if f.KeyPassPrompt {
		fmt.Fprint(os.Stderr, "Enter the key passphrase: ")
		keyPassBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			log.Error("Failed to read key passphrase", "error", err)
		}
		keyPass = string(keyPassBytes)
		fmt.Fprintln(os.Stderr)
	}
	return
}

func buildDeviceOptions(f *flags, password, keyPass string) []device.DeviceOption {
	options := []device.DeviceOption{
		device.WithSSHClient(sshmanager.RealSSHClient{}),
		device.WithLogger(logger.Default()),
	}
	if f.Username != "" {
		options = append(options, device.WithUser(f.Username))
	}
	if password != "" {
		options = append(options, device.WithPassword(password))
	}
	if keyPass != "" {
		options = append(options, device.WithKeyPassphrase(keyPass))
	}
	return options
}

func collectEntries(f *flags) ([]deviceEntry, error) {
	var entries []deviceEntry
	if f.IniFilePath != "" {
		fromFile, err := readDevicesFromFile(f.IniFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read INI file: %w", err)
		}
		entries = append(entries, fromFile...)
	}
	for _, serial := range f.Serials {
		entries = append(entries, deviceEntry{Host: "localhost", Serial: serial, SDK: f.SDK})
	}
	return entries, nil
}

// initializeDevices connects to every device, at most concurrency at a time.
// Devices that fail to come up are logged and skipped.
func initializeDevices(ctx context.Context, entries []deviceEntry, options []device.DeviceOption, concurrency int) *devicegroup.DeviceGroup {
	log := logger.Default()
	group := devicegroup.NewDeviceGroup()

	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for _, entry := range entries {
		wg.Add(1)
		go func(entry deviceEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			opts := append([]device.DeviceOption{device.WithHost(entry.Host)}, options...)
			if entry.SDK != 0 {
				opts = append(opts, device.WithSDKVersion(entry.SDK))
			}

			log.Debug("Adding device", "host", entry.Host, "serial", entry.Serial)
			d, err := device.NewDevice(ctx, entry.Serial, opts...)
			if err != nil {
				log.Error("Failed to create device", "host", entry.Host, "serial", entry.Serial, "error", err)
				return
			}
			group.AddDevice(d)
		}(entry)
	}
	wg.Wait()

	return group
}

// report is the per-device JSON output.
type report struct {
	SDK       int                    `json:"sdk"`
	Users     *usermanager.Snapshot  `json:"users,omitempty"`
	User      *usermanager.User      `json:"user,omitempty"`
	UserTypes []usermanager.UserType `json:"userTypes,omitempty"`
	Packages  []string               `json:"packages,omitempty"`
}

func buildReport(ctx context.Context, f *flags, d *device.Device) (report, error) {
	r := report{SDK: d.SDKVersion}

	if f.ListUsers || f.ListUserTypes || f.UserID != noUser {
		snapshot, err := d.UserManager.All(ctx)
		if err != nil {
			return r, err
		}
		if err := fillSnapshot(&r, f, snapshot); err != nil {
			return r, err
		}
	}

	if f.ListPackages {
		userID := f.UserID
		if userID == noUser {
			current, err := d.UserManager.CurrentUser(ctx)
			if err != nil {
				return r, err
			}
			userID = current
		}
		packages, err := d.PackageManager.ListPackages(ctx, userID)
		if err != nil {
			return r, fmt.Errorf("failed to list packages: %w", err)
		}
		r.Packages = packages
	}
	return r, nil
}

func fillSnapshot(r *report, f *flags, snapshot *usermanager.Snapshot) error {
	if f.ListUsers {
		r.Users = snapshot
	}
	if f.UserID != noUser {
		user, ok := snapshot.User(f.UserID)
		if !ok {
			return fmt.Errorf("user %d not found", f.UserID)
		}
		r.User = &user
	}
	if f.ListUserTypes {
		types := snapshot.UserTypes()
		names := make([]string, 0, len(types))
		for name := range types {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			r.UserTypes = append(r.UserTypes, types[name])
		}
	}
	return nil
}

// parseDumpFile reports on a saved dump without any device.
func parseDumpFile(f *flags, out io.Writer) error {
	if f.SDK == 0 {
		return errors.New("-dump-file requires -sdk")
	}
	parser, err := usermanager.NewParser(f.SDK)
	if err != nil {
		return err
	}

	b, err := os.ReadFile(f.DumpFile)
	if err != nil {
		return err
	}
	snapshot, err := parser.Parse(string(b))
	if err != nil {
		return err
	}

	r := report{SDK: f.SDK}
	if !f.ListUserTypes && f.UserID == noUser {
		r.Users = snapshot
	}
	if err := fillSnapshot(&r, f, snapshot); err != nil {
		return err
	}
	return writeJSON(out, r)
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func run(f *flags, out io.Writer) error {
	log := logger.Default()

	if f.DumpFile != "" {
		return parseDumpFile(f, out)
	}

	entries, err := collectEntries(f)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errors.New("no devices given; use -serial or -ini")
	}

	password, keyPass := readPasswords(f)
	options := buildDeviceOptions(f, password, keyPass)

	initCtx, cancel := context.WithTimeout(context.Background(), f.Timeout)
	group := initializeDevices(initCtx, entries, options, f.Concurrency)
	cancel()
	group.Log = log

	if group.Len() == 0 {
		return errors.New("no device could be initialized")
	}

	if f.ServeAddr != "" {
		log.Info("Serving device API", "addr", f.ServeAddr, "devices", group.Len())
		return http.ListenAndServe(f.ServeAddr, api.NewRouter(group, log))
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.Timeout)
	defer cancel()

	var mu sync.Mutex
	reports := make(map[string]report)
	err = group.Process(ctx, func(ctx context.Context, d *device.Device) error {
		r, err := buildReport(ctx, f, d)
		if err != nil {
			return err
		}
		mu.Lock()
		reports[d.Key()] = r
		mu.Unlock()
		return nil
	}, f.Concurrency)

	if writeErr := writeJSON(out, reports); writeErr != nil {
		return writeErr
	}
	return err
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	logFile, err := configureLogger(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}

	err = run(f, os.Stdout)
	if err != nil {
		logger.Default().Error("droidcheck failed", "error", err)
	}
	if logFile != nil {
		logFile.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}
