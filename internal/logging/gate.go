package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"go.uber.org/zap/zapcore"
)

// Gate moves log output into a file while a full-screen UI owns the
// terminal. Every logger derived from one built with the gate follows it.
type Gate struct {
	mu    sync.RWMutex
	alt   zapcore.Core
	file  *os.File
	level zapcore.LevelEnabler
	enc   zapcore.EncoderConfig
}

// Divert sends output to path (appended, JSON) until Restore.
func (g *Gate) Divert(path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.file != nil {
		return fmt.Errorf("log output already diverted to %s", g.file.Name())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	level := g.level
	if level == nil {
		level = zapcore.WarnLevel
	}
	g.file = f
	g.alt = zapcore.NewCore(zapcore.NewJSONEncoder(g.enc), zapcore.AddSync(f), level)
	return nil
}

// Restore puts output back on the primary destination.
func (g *Gate) Restore() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.file == nil {
		return
	}
	_ = g.alt.Sync()
	_ = g.file.Close()
	g.file, g.alt = nil, nil
}

func (g *Gate) current() zapcore.Core {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.alt
}

// gateCore writes to the primary core unless the gate is diverted.
// Fields added with With are kept so diverted entries carry them too.
type gateCore struct {
	zapcore.Core
	gate   *Gate
	fields []zapcore.Field
}

func (c *gateCore) With(fields []zapcore.Field) zapcore.Core {
	return &gateCore{
		Core:   c.Core.With(fields),
		gate:   c.gate,
		fields: append(slices.Clip(c.fields), fields...),
	}
}

func (c *gateCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if alt := c.gate.current(); alt != nil {
		if alt.Enabled(ent.Level) {
			return ce.AddCore(ent, c)
		}
		return ce
	}
	return c.Core.Check(ent, ce)
}

func (c *gateCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	if alt := c.gate.current(); alt != nil {
		return alt.With(c.fields).Write(ent, fields)
	}
	return c.Core.Write(ent, fields)
}
