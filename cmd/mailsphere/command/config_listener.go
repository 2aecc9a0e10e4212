package command

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	goerrors "github.com/pixil98/go-errors"
	"github.com/pixil98/mailsphere/internal/listener"
	"github.com/pixil98/go-service"
	"golang.org/x/crypto/ssh"
)

type ListenerType int

const (
	ListenerTypeTelnet ListenerType = iota
	ListenerTypeSSH
)

func (lt *ListenerType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "telnet":
		*lt = ListenerTypeTelnet
	case "ssh":
		*lt = ListenerTypeSSH
	default:
		return fmt.Errorf("unknown listener type: %s", text)
	}
	return nil
}

type ListenerConfig struct {
	Protocol    ListenerType `json:"protocol"`
	Port        uint16       `json:"port"`
	HostKeyPath string       `json:"host_key_path,omitempty"`
}

func (lt ListenerType) String() string {
	switch lt {
	case ListenerTypeTelnet:
		return "telnet"
	case ListenerTypeSSH:
		return "ssh"
	default:
		return fmt.Sprintf("listener(%d)", int(lt))
	}
}

func (cl *ListenerConfig) validate() error {
	el := goerrors.NewErrorList()

	if cl.Port == 0 {
		el.Add(fmt.Errorf("port must be set to a positive integer"))
	}
	if cl.HostKeyPath != "" && cl.Protocol != ListenerTypeSSH {
		el.Add(fmt.Errorf("host_key_path is only used by ssh listeners"))
	}

	return el.Err()
}

func (cl *ListenerConfig) BuildListener(cm *listener.ConnectionManager) (service.Worker, error) {
	switch cl.Protocol {
	case ListenerTypeTelnet:
		return listener.NewTelnetListener(cl.Port, cm), nil
	case ListenerTypeSSH:
		hostKey, err := cl.loadOrGenerateHostKey()
		if err != nil {
			return nil, fmt.Errorf("setting up ssh host key: %w", err)
		}
		return listener.NewSshListener(cl.Port, cm, hostKey), nil
	default:
		return nil, fmt.Errorf("unknown listener type: %v", cl.Protocol)
	}
}

// loadOrGenerateHostKey reads the configured host key. A configured path
// that does not exist yet gets a freshly generated key written to it, so
// the server keeps its identity across restarts. Without a path the key
// lives only as long as the process.
func (cl *ListenerConfig) loadOrGenerateHostKey() (ssh.Signer, error) {
	if cl.HostKeyPath != "" {
		keyBytes, err := os.ReadFile(cl.HostKeyPath)
		if err == nil {
			signer, err := ssh.ParsePrivateKey(keyBytes)
			if err != nil {
				return nil, fmt.Errorf("parsing host key %q: %w", cl.HostKeyPath, err)
			}
			return signer, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading host key %q: %w", cl.HostKeyPath, err)
		}
	}

	_, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating host key: %w", err)
	}

	if cl.HostKeyPath == "" {
		slog.Warn("no host_key_path configured for ssh listener, generating ephemeral key")
	} else {
		block, err := ssh.MarshalPrivateKey(privKey, "mailsphere host key")
		if err != nil {
			return nil, fmt.Errorf("encoding host key: %w", err)
		}
		if err := os.WriteFile(cl.HostKeyPath, pem.EncodeToMemory(block), 0o600); err != nil {
			return nil, fmt.Errorf("writing host key %q: %w", cl.HostKeyPath, err)
		}
		slog.Info("generated ssh host key", "path", cl.HostKeyPath)
	}

	signer, err := ssh.NewSignerFromKey(privKey)
	if err != nil {
		return nil, fmt.Errorf("creating signer from host key: %w", err)
	}
	return signer, nil
}
