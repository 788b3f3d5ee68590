package lg

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-logr/stdr"
	"github.com/logzio/logzio-go"
	"go.opentelemetry.io/otel"
)

// record is one shipped log line.
type record struct {
	Message   string `json:"message"`
	App       string `json:"app"`
	Command   string `json:"command,omitempty"`
	Version   string `json:"version,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
	Host      string `json:"host,omitempty"`
}

// shipper turns standard log output into one JSON record per line.
type shipper struct {
	base record
	w    io.Writer
}

func newShipper(w io.Writer, app string, args []string) *shipper {
	s := &shipper{w: w, base: record{App: app}}

	if len(args) > 1 {
		s.base.Command = args[1]
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		s.base.GoVersion = info.GoVersion
		s.base.Version = info.Main.Version
	}
	if hostname, err := os.Hostname(); err == nil {
		s.base.Host = hostname
	}

	return s
}

// Write reports all of b as written once every non-empty line is shipped.
// Lines starting with # are config echoes and stay local.
func (s *shipper) Write(b []byte) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	scan := bufio.NewScanner(bytes.NewReader(b))
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		r := s.base
		r.Message = line
		if err := enc.Encode(r); err != nil {
			return 0, err
		}
	}
	if err := scan.Err(); err != nil {
		return 0, err
	}

	if buf.Len() > 0 {
		if _, err := s.w.Write(buf.Bytes()); err != nil {
			return 0, err
		}
	}
	return len(b), nil
}

func initLogger(name string) func() error {
	log.SetPrefix("[" + name + "] ")
	log.SetFlags(log.LstdFlags&^(log.Ldate|log.Ltime) | log.Lshortfile)
	otel.SetLogger(stdr.New(log.Default()))

	token := envSecret("RELAY_LOG_TOKEN", "")
	if token == "" {
		return nil
	}

	drain, err := time.ParseDuration(env("RELAY_LOG_DRAIN", "5s"))
	if err != nil {
		log.Println("RELAY_LOG_DRAIN: ", err)
		drain = 5 * time.Second
	}

	l, err := logzio.New(
		token.Secret(),
		logzio.SetUrl(env("RELAY_LOG_URL", "https://listener.logz.io:8071")),
		logzio.SetDrainDuration(drain),
		logzio.SetTempDirectory(env("RELAY_LOG_DIR", os.TempDir())),
		logzio.SetCheckDiskSpace(true),
		logzio.SetDrainDiskThreshold(70),
	)
	if err != nil {
		log.Println("log shipping disabled: ", err)
		return nil
	}

	log.SetOutput(io.MultiWriter(os.Stderr, newShipper(l, name, os.Args)))

	return func() error {
		defer log.Println("log shipping stopped")
		log.SetOutput(os.Stderr)
		l.Stop()
		return nil
	}
}
