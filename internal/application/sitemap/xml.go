package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const (
	sitemapNS  = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNS    = "http://www.w3.org/1999/xhtml"
	dateLayout = "2006-01-02"
)

// URL is one <url> entry
type URL struct {
	Loc        string      `xml:"loc"`
	LastMod    string      `xml:"lastmod,omitempty"`
	Alternates []Alternate `xml:"xhtml:link"`
}

// Alternate links a URL to its translation in another locale
type Alternate struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	Xhtml   string   `xml:"xmlns:xhtml,attr"`
	URLs    []URL    `xml:"url"`
}

// IndexEntry is one <sitemap> entry of a sitemap index
type IndexEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Xmlns    string       `xml:"xmlns,attr"`
	Sitemaps []IndexEntry `xml:"sitemap"`
}

// EncodeURLSet renders urls as a sitemap document
func EncodeURLSet(urls []URL) ([]byte, error) {
	return encode(urlSet{Xmlns: sitemapNS, Xhtml: xhtmlNS, URLs: urls})
}

// EncodeIndex renders a sitemap index document
func EncodeIndex(entries []IndexEntry) ([]byte, error) {
	return encode(sitemapIndex{Xmlns: sitemapNS, Sitemaps: entries})
}

func encode(doc any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
