package scope

import (
	"io/ioutil"

	"github.com/vmihailenco/msgpack/v5"

	"viper/types"
)

// TemplateCacheEntry is the on-disk shape of one generic symbol's
// instantiation cache, dumped by DumpTemplateCache. This is a debug
// affordance only -- the compiler persists no artifacts between runs --
// so only the cache *keys* (the mangled actual-parameter lists
// FindInstantiation already matches against) are recorded, never the
// cloned AST bodies themselves, which are not meaningfully serializable
// outside this process.
type TemplateCacheEntry struct {
	Symbol string   `msgpack:"symbol"`
	Keys   []string `msgpack:"keys"`
}

// CollectTemplateCacheEntries walks root's entire scope DAG and returns
// one TemplateCacheEntry per generic symbol that has been instantiated
// at least once.
func CollectTemplateCacheEntries(root *Scope) []TemplateCacheEntry {
	var entries []TemplateCacheEntry
	walkTemplateSymbols(root, &entries)
	return entries
}

func walkTemplateSymbols(s *Scope, out *[]TemplateCacheEntry) {
	for _, sym := range s.Symbols {
		if sym.Template == nil || len(sym.Template.Instantiations) == 0 {
			continue
		}
		keys := make([]string, len(sym.Template.Instantiations))
		for i, inst := range sym.Template.Instantiations {
			keys[i] = mangleKey(inst.ActualParameters)
		}
		*out = append(*out, TemplateCacheEntry{Symbol: sym.Name, Keys: keys})
	}
	for _, child := range s.Children {
		walkTemplateSymbols(child, out)
	}
}

func mangleKey(params []types.Type) string {
	key := ""
	for _, p := range params {
		key += p.MangleID()
	}
	return key
}

// DumpTemplateCache writes the current template instantiation cache's
// key set to path in msgpack form -- the `--dump-template-cache` CLI
// debug flag's backing implementation.
func DumpTemplateCache(path string, root *Scope) error {
	entries := CollectTemplateCacheEntries(root)

	data, err := msgpack.Marshal(entries)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(path, data, 0644)
}
