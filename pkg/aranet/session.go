package aranet

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// LoginResponse is the payload returned by POST /user/login. Spaces maps
// space id to space name. Raw keeps the body exactly as received so it can
// be cached without re-encoding.
type LoginResponse struct {
	Auth   string            `json:"auth"`
	Spaces map[string]string `json:"spaces"`
	Raw    json.RawMessage   `json:"-"`
}

func (r *LoginResponse) UnmarshalJSON(data []byte) error {
	type alias LoginResponse
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = LoginResponse(a)
	r.Raw = append([]byte(nil), data...)
	return nil
}

// Session is an access credential obtained from a login, replaced wholesale
// whenever the cloud rejects it. There is no local expiry: validity is
// discovered reactively.
type Session struct {
	Token      string
	ObtainedAt time.Time
	Login      *LoginResponse
}

// SessionStore persists at most one session per cache file, the raw login
// payload as an opaque JSON blob. Access to a given path is serialized with
// an in-process mutex plus a sibling flock, so concurrent operations racing
// to refresh a session cannot tear the file.
type SessionStore struct {
	log *zap.Logger

	mu    sync.Mutex
	paths map[string]*sync.Mutex
}

func NewSessionStore(log *zap.Logger) *SessionStore {
	if log == nil {
		log = zap.L()
	}
	return &SessionStore{log: log, paths: map[string]*sync.Mutex{}}
}

func (s *SessionStore) pathLock(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.paths[path]
	if !ok {
		l = &sync.Mutex{}
		s.paths[path] = l
	}
	return l
}

// Load reads the cached session from path. A missing, unreadable, or
// malformed cache is not an error: it returns nil, meaning no session.
// An empty path disables caching and also returns nil.
func (s *SessionStore) Load(path string) *Session {
	if path == "" {
		return nil
	}
	l := s.pathLock(path)
	l.Lock()
	defer l.Unlock()

	fl := flock.New(path + ".lock")
	if locked, err := fl.TryRLock(); err == nil && locked {
		defer fl.Unlock()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		s.log.Debug("no usable login cache", zap.String("path", path), zap.Error(err))
		return nil
	}
	var login LoginResponse
	if err := json.Unmarshal(raw, &login); err != nil || login.Auth == "" {
		s.log.Info("ignoring malformed login cache", zap.String("path", path))
		return nil
	}

	obtained := time.Time{}
	if info, err := os.Stat(path); err == nil {
		obtained = info.ModTime()
	}
	return &Session{Token: login.Auth, ObtainedAt: obtained, Login: &login}
}

// Save overwrites the cache at path with the session's login payload. It is
// a no-op when path is empty. The blob is serialized before the file is
// touched, so a marshalling failure never truncates an existing cache.
func (s *SessionStore) Save(path string, sess *Session) error {
	if path == "" || sess == nil {
		return nil
	}

	blob := []byte(nil)
	if sess.Login != nil {
		blob = sess.Login.Raw
	}
	if len(blob) == 0 {
		var err error
		blob, err = json.Marshal(map[string]string{"auth": sess.Token})
		if err != nil {
			return err
		}
	}

	l := s.pathLock(path)
	l.Lock()
	defer l.Unlock()

	fl := flock.New(path + ".lock")
	if locked, err := fl.TryLock(); err == nil && locked {
		defer fl.Unlock()
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(blob); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	s.log.Info("saved login data to cache file", zap.String("path", path))
	return nil
}
