package constant

// ResolveLyricsFn is the global function a lyrics resolver script must define.
const ResolveLyricsFn = "ResolveLyrics"

// ResolverTemplate is a Go text/template for scaffolding new Lua resolver scripts.
const ResolverTemplate = `{{ $divider := repeat "-" (plus (max (len .Name) (len .Author) 3) 12) }}{{ $divider }}
-- @name    {{ .Name }}
-- @author  {{ .Author }}
-- @license MIT
{{ $divider }}


---@alias track { path: string, title: string, album: string, artists: string[], length: number }


----- IMPORTS -----
--- END IMPORTS ---



----- MAIN -----

--- Resolves the lyrics file for the given track.
-- @param track track Currently playing track
-- @return string|nil Path to the .lrc file, nil to let the next resolver try
function {{ .ResolveLyricsFn }}(track)
	if track.path == "" then
		return nil
	end
	return (track.path:gsub("%.[^./]+$", "")) .. ".lrc"
end


--- END MAIN ---

-- ex: ts=4 sw=4 et filetype=lua
`
