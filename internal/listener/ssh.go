package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/crypto/ssh"
)

const sshBanner = "Mailsphere courier office. No password needed, just pick up your bag.\n"

// SshListener serves one console session per ssh connection. Clients
// authenticate with nothing; the login name is only used for logging.
type SshListener struct {
	port    uint16
	cm      *ConnectionManager
	hostKey ssh.Signer
}

func NewSshListener(port uint16, cm *ConnectionManager, hostKey ssh.Signer) *SshListener {
	return &SshListener{
		port:    port,
		cm:      cm,
		hostKey: hostKey,
	}
}

func (l *SshListener) serverConfig() *ssh.ServerConfig {
	config := &ssh.ServerConfig{
		NoClientAuth: true,
		BannerCallback: func(ssh.ConnMetadata) string {
			return sshBanner
		},
	}
	config.AddHostKey(l.hostKey)
	return config
}

func (l *SshListener) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}
	slog.InfoContext(ctx, "listening for ssh", "port", l.port)

	return l.serve(ctx, listener)
}

func (l *SshListener) serve(ctx context.Context, listener net.Listener) error {
	config := l.serverConfig()
	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			slog.ErrorContext(ctx, "accepting ssh connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.handleConnection(connCtx, conn, config)
		}()
	}
}

func (l *SshListener) handleConnection(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		slog.WarnContext(ctx, "ssh handshake", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	defer sshConn.Close()

	info := ConnInfo{
		Protocol: "ssh",
		Remote:   sshConn.RemoteAddr().String(),
		User:     sshConn.User(),
	}

	// Closing the connection ends the channel loop below.
	go func() {
		<-ctx.Done()
		sshConn.Close()
	}()
	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			newChan.Reject(ssh.UnknownChannelType, "only session channels are served")
			continue
		}

		ch, requests, err := newChan.Accept()
		if err != nil {
			slog.WarnContext(ctx, "accepting ssh channel", "error", err)
			continue
		}

		select {
		case <-awaitShell(requests):
			l.cm.AcceptConnection(ctx, info, newCRLFReadWriter(ch))
		case <-ctx.Done():
		}
		ch.Close()
	}
}

// awaitShell answers channel requests and closes the returned channel once
// the client asks for a shell. Clients hold back input until that reply.
// PTYs are refused so the client keeps local echo and line editing, which
// the line-based console relies on.
func awaitShell(in <-chan *ssh.Request) <-chan struct{} {
	ready := make(chan struct{})
	go func() {
		started := false
		for req := range in {
			switch {
			case req.Type == "shell" && !started:
				started = true
				req.Reply(true, nil)
				close(ready)
			case req.Type == "env":
				req.Reply(true, nil)
			default:
				req.Reply(false, nil)
			}
		}
	}()
	return ready
}
