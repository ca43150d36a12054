package search

import (
	"strings"
	"unicode"
)

// Indices derives every index, alias and pipeline name of the content
// search domain from a namespace.
//
//	<ns>_posts                 write alias, fed through the language pipeline
//	<ns>_posts_<lang>[_<date>] language partitions
//	<ns>_posts_all             read alias over every partition
type Indices struct {
	namespace string
}

func NewIndices(namespace string) Indices {
	return Indices{namespace: namespace}
}

func (i Indices) WriteAlias() string { return i.namespace + "_posts" }
func (i Indices) ReadAlias() string  { return i.namespace + "_posts_all" }
func (i Indices) Pipeline() string   { return i.namespace + "_posts_lang_pipeline" }

// ForLang returns the partition for lang. An unknown language maps to the
// write alias.
func (i Indices) ForLang(lang string) string {
	if lang == "" {
		return i.WriteAlias()
	}
	return i.WriteAlias() + "_" + lang
}

// LanguageOf parses the language from a concrete index name such as
// dev_posts_en or dev_posts_en_20240101. It returns "" for any index that is
// not a language partition.
func (i Indices) LanguageOf(index string) string {
	prefix := i.WriteAlias() + "_"
	if !strings.HasPrefix(index, prefix) {
		return ""
	}
	lang, _, _ := strings.Cut(strings.TrimPrefix(index, prefix), "_")
	if lang == "" || lang == "all" || !isLangCode(lang) {
		return ""
	}
	return lang
}

func isLangCode(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
