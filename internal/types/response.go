package types

import (
	"bytes"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html"
)

// Response represents the result of fetching a request.
type Response struct {
	// StatusCode is the HTTP status code (200 for rendered pages).
	StatusCode int

	// Headers are the response HTTP headers.
	Headers http.Header

	// Body is the raw response body bytes (rendered markup for browser fetches).
	Body []byte

	// Request is a reference to the original request.
	Request *Request

	// ContentType is the MIME type of the response.
	ContentType string

	// FinalURL is the URL after any redirects.
	FinalURL string

	// Doc is a parsed goquery document (lazily loaded).
	Doc *goquery.Document

	// Feed marks a body fetched from a feed-looking URL. Such bodies are
	// parsed as XML.
	Feed bool

	// Rendered marks a body produced by the headless browser.
	Rendered bool
}

// NewResponse creates a Response from an http.Response.
func NewResponse(req *Request, httpResp *http.Response, body []byte) *Response {
	return &Response{
		StatusCode:  httpResp.StatusCode,
		Headers:     httpResp.Header,
		Body:        body,
		Request:     req,
		ContentType: httpResp.Header.Get("Content-Type"),
		FinalURL:    httpResp.Request.URL.String(),
		Feed:        req.IsFeed(),
	}
}

// NewBrowserResponse creates a Response from headless browser output.
func NewBrowserResponse(req *Request, body []byte, finalURL string) *Response {
	return &Response{
		StatusCode:  http.StatusOK,
		Headers:     make(http.Header),
		Body:        body,
		Request:     req,
		ContentType: "text/html",
		FinalURL:    finalURL,
		Rendered:    true,
	}
}

// Document returns a parsed goquery document, lazily initializing it.
// Feed bodies are parsed as XML; a body that is not well-formed XML falls
// back to the tolerant HTML tokenizer.
func (r *Response) Document() (*goquery.Document, error) {
	if r.Doc != nil {
		return r.Doc, nil
	}
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil, &ParseError{URL: r.Request.URLString(), Err: ErrEmptyResponse}
	}

	var doc *goquery.Document
	if r.Feed {
		if root, err := xmlquery.Parse(bytes.NewReader(r.Body)); err == nil {
			doc = goquery.NewDocumentFromNode(xmlToHTML(root))
		}
	}
	if doc == nil {
		var err error
		doc, err = goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			return nil, &ParseError{URL: r.Request.URLString(), Err: err}
		}
	}
	doc.Url = r.Request.URL
	r.Doc = doc
	return doc, nil
}

// IsSuccess returns true if the response status is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// xmlToHTML mirrors an XML tree as html.Node values so goquery selectors
// run over it. Element names keep their local part; CDATA becomes text.
// Elements such as <link> keep their children, which the HTML tokenizer
// would drop as void elements.
func xmlToHTML(n *xmlquery.Node) *html.Node {
	out := &html.Node{Type: html.DocumentNode}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := convertXMLNode(c); child != nil {
			out.AppendChild(child)
		}
	}
	return out
}

func convertXMLNode(n *xmlquery.Node) *html.Node {
	switch n.Type {
	case xmlquery.ElementNode:
		el := &html.Node{Type: html.ElementNode, Data: n.Data}
		for _, a := range n.Attr {
			el.Attr = append(el.Attr, html.Attribute{Namespace: a.Name.Space, Key: a.Name.Local, Val: a.Value})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := convertXMLNode(c); child != nil {
				el.AppendChild(child)
			}
		}
		return el
	case xmlquery.DeclarationNode, xmlquery.CommentNode, xmlquery.DocumentNode:
		return nil
	default:
		return &html.Node{Type: html.TextNode, Data: n.Data}
	}
}
