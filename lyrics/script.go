package lyrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lrcshow-cli/lrcshow/constant"
	"github.com/lrcshow-cli/lrcshow/filesystem"
	"github.com/lrcshow-cli/lrcshow/player"
	"github.com/lrcshow-cli/lrcshow/util"
	libs "github.com/metafates/mangal-lua-libs"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

var ErrNoResolveFunction = fmt.Errorf("function %s is required but not defined", constant.ResolveLyricsFn)

// DefaultScriptTimeout bounds a single ResolveLyrics call.
const DefaultScriptTimeout = time.Second

var bytecodeCache sync.Map

// compile returns the bytecode of the script at path, compiling it on first use.
func compile(path string) (*lua.FunctionProto, error) {
	if cached, ok := bytecodeCache.Load(path); ok {
		return cached.(*lua.FunctionProto), nil
	}

	file, err := filesystem.API().Open(path)
	if err != nil {
		return nil, err
	}
	defer util.Ignore(file.Close)

	chunk, err := parse.Parse(file, path)
	if err != nil {
		return nil, err
	}

	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, err
	}

	bytecodeCache.Store(path, proto)
	return proto, nil
}

// Script resolves lyrics paths with a Lua script defining ResolveLyrics(track).
type Script struct {
	Name string
	// Timeout bounds each call, the script is interrupted once it expires.
	Timeout time.Duration

	mu    sync.Mutex
	state *lua.LState
}

// LoadScript runs the script at path and checks that it defines the resolver function.
func LoadScript(path string) (*Script, error) {
	proto, err := compile(path)
	if err != nil {
		return nil, err
	}

	state := lua.NewState()
	libs.Preload(state)

	state.Push(state.NewFunctionFromProto(proto))
	if err := state.PCall(0, lua.MultRet, nil); err != nil {
		state.Close()
		return nil, err
	}

	name := util.FileStem(path)

	if state.GetGlobal(constant.ResolveLyricsFn).Type() != lua.LTFunction {
		state.Close()
		return nil, fmt.Errorf("%s: %w", name, ErrNoResolveFunction)
	}

	return &Script{Name: name, Timeout: DefaultScriptTimeout, state: state}, nil
}

func (s *Script) Resolve(meta player.Metadata) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	s.state.SetContext(ctx)
	defer s.state.RemoveContext()

	err := s.state.CallByParam(lua.P{
		Fn:      s.state.GetGlobal(constant.ResolveLyricsFn),
		NRet:    1,
		Protect: true,
	}, trackTable(s.state, meta))
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s: %s: %w", s.Name, constant.ResolveLyricsFn, ctx.Err())
		}
		return "", err
	}

	ret := s.state.Get(-1)
	s.state.Pop(1)

	switch ret.Type() {
	case lua.LTNil:
		return "", nil
	case lua.LTString:
		return ret.String(), nil
	default:
		return "", fmt.Errorf("%s: %s returned %s, expected string or nil", s.Name, constant.ResolveLyricsFn, ret.Type())
	}
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Close()
}

func trackTable(L *lua.LState, meta player.Metadata) *lua.LTable {
	table := L.NewTable()
	table.RawSetString("path", lua.LString(meta.Path))
	table.RawSetString("title", lua.LString(meta.Title))
	table.RawSetString("album", lua.LString(meta.Album))
	table.RawSetString("length", lua.LNumber(meta.Length.Seconds()))

	artists := L.NewTable()
	for _, artist := range meta.Artists {
		artists.Append(lua.LString(artist))
	}
	table.RawSetString("artists", artists)

	return table
}
