// Package tlsconfig loads and hot-reloads the certificate and private key
// a wss/https server reads from its configured certificate directory
// (spec.md §4.8). The Diffie-Hellman parameter file in that directory is
// only checked for presence; its contents are not read or used.
package tlsconfig

import (
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// File names expected inside a cert directory.
const (
	CertFile = "cert.pem"
	KeyFile  = "key.pem"
	DHFile   = "dh.pem"
)

// Watcher loads cert.pem/key.pem from a directory and hot-reloads them
// into a *tls.Config via GetCertificate whenever fsnotify reports a
// write in that directory, so a certificate rotation never requires
// restarting the listening socket.
type Watcher struct {
	dir string
	log *logrus.Entry

	cert atomic.Pointer[tls.Certificate]

	mu     sync.Mutex
	fsw    *fsnotify.Watcher
	closed chan struct{}
}

// NewWatcher loads the initial certificate/key pair from dir and
// validates dh.pem is present. The DH parameters are not loaded or
// passed to the TLS handshake; only the file's presence is enforced.
func NewWatcher(dir string) (*Watcher, error) {
	if _, err := os.Stat(filepath.Join(dir, DHFile)); err != nil {
		return nil, fmt.Errorf("tlsconfig: %s missing from %s: %w", DHFile, dir, err)
	}

	w := &Watcher{
		dir:    dir,
		log:    logrus.WithField("component", "tlsconfig"),
		closed: make(chan struct{}),
	}
	if err := w.reload(); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("tlsconfig: fsnotify.NewWatcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("tlsconfig: watch %s: %w", dir, err)
	}
	w.fsw = fsw
	go w.watch()

	return w, nil
}

func (w *Watcher) reload() error {
	cert, err := tls.LoadX509KeyPair(filepath.Join(w.dir, CertFile), filepath.Join(w.dir, KeyFile))
	if err != nil {
		return fmt.Errorf("tlsconfig: load key pair: %w", err)
	}
	w.cert.Store(&cert)
	return nil
}

func (w *Watcher) watch() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			base := filepath.Base(ev.Name)
			if base != CertFile && base != KeyFile {
				continue
			}
			if err := w.reload(); err != nil {
				w.log.WithError(err).Warn("certificate reload failed, keeping previous certificate")
			} else {
				w.log.Info("certificate reloaded")
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("certificate watch error")
		case <-w.closed:
			return
		}
	}
}

// GetCertificate is wired into tls.Config.GetCertificate so every new
// handshake picks up the most recently loaded certificate.
func (w *Watcher) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return w.cert.Load(), nil
}

// Config builds a *tls.Config backed by this watcher's hot-reloaded
// certificate.
func (w *Watcher) Config() *tls.Config {
	return &tls.Config{GetCertificate: w.GetCertificate}
}

// Close stops the filesystem watch. The last loaded certificate remains
// in effect.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.closed:
		return nil
	default:
		close(w.closed)
	}
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}
