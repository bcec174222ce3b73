// Copyright (C) 2021  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package mails

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/textproto"
)

// ErrMissingBoundary is returned for multipart entities without a boundary parameter.
var ErrMissingBoundary = errors.New("mime: multipart without boundary")

// Kind distinguishes leafs from containers.
type Kind int

const (
	// Leaf is an entity with a body.
	Leaf Kind = iota
	// Container is a multipart entity with child entities.
	Container
)

func (k Kind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Container:
		return "container"
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Node is one entity of a MIME message. A Leaf carries its body exactly as transmitted, that is
// still in its Content-Transfer-Encoding. A Container carries its children in order.
type Node struct {
	Kind     Kind
	Header   message.Header
	Body     []byte
	Children []*Node
}

// ParseMessage reads a complete message. Malformed headers or multipart bodies are returned as errors.
func ParseMessage(r io.Reader) (*Node, error) {
	br := bufio.NewReader(r)

	header, err := textproto.ReadHeader(br)
	if err != nil {
		return nil, fmt.Errorf("could not read header: %w", err)
	}

	return parseNode(message.Header{Header: header}, br)
}

func parseNode(header message.Header, body io.Reader) (*Node, error) {
	boundary, isMultipart, err := multipartBoundary(header)
	if err != nil {
		return nil, err
	}

	if !isMultipart {
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("could not read body: %w", err)
		}

		return &Node{Kind: Leaf, Header: header, Body: raw}, nil
	}

	node := Node{Kind: Container, Header: header}
	mr := textproto.NewMultipartReader(body, boundary)

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("could not read part %d: %w", len(node.Children)+1, err)
		}

		child, err := parseNode(message.Header{Header: part.Header}, part)
		if err != nil {
			return nil, err
		}

		node.Children = append(node.Children, child)
	}

	return &node, nil
}

// multipartBoundary inspects the Content-Type of an entity. A missing or unparsable Content-Type
// makes the entity a leaf, unless it claims to be multipart.
func multipartBoundary(header message.Header) (string, bool, error) {
	raw := header.Get("Content-Type")
	if raw == "" {
		return "", false, nil
	}

	mediaType, params, err := header.ContentType()
	if err != nil {
		if strings.HasPrefix(Lower(strings.TrimSpace(raw)), "multipart/") {
			return "", false, fmt.Errorf("could not parse content type %q: %w", raw, err)
		}

		return "", false, nil
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		return "", false, nil
	}

	boundary := params["boundary"]
	if boundary == "" {
		return "", false, ErrMissingBoundary
	}

	return boundary, true, nil
}

// Decoded returns the body of a leaf with its Content-Transfer-Encoding removed. Bodies in
// charsets other than utf-8 and us-ascii are returned in their original charset.
func (n *Node) Decoded() ([]byte, error) {
	if n.Kind != Leaf {
		return nil, fmt.Errorf("cannot decode a %s", n.Kind)
	}

	entity, err := message.New(n.Header, bytes.NewReader(n.Body))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, err
	}

	return io.ReadAll(entity.Body)
}

// WriteTo serializes the node including its header.
func (n *Node) WriteTo(w io.Writer) (int64, error) {
	cw := countingWriter{w: w}

	if err := textproto.WriteHeader(&cw, n.Header.Header); err != nil {
		return cw.n, err
	}

	err := n.writeBody(&cw)
	return cw.n, err
}

// Bytes serializes the node into a new slice.
func (n *Node) Bytes() ([]byte, error) {
	var buffer bytes.Buffer

	if _, err := n.WriteTo(&buffer); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

func (n *Node) writeBody(w io.Writer) error {
	if n.Kind == Leaf {
		_, err := w.Write(n.Body)
		return err
	}

	boundary, _, err := multipartBoundary(n.Header)
	if err != nil {
		return err
	}

	mw := textproto.NewMultipartWriter(w)
	if err := mw.SetBoundary(boundary); err != nil {
		return err
	}

	for _, child := range n.Children {
		pw, err := mw.CreatePart(child.Header.Header)
		if err != nil {
			return err
		}

		if err := child.writeBody(pw); err != nil {
			return err
		}
	}

	return mw.Close()
}

// Walk calls fn for every leaf below n in depth-first order, n included.
func (n *Node) Walk(fn func(leaf *Node) error) error {
	if n.Kind == Leaf {
		return fn(n)
	}

	for _, child := range n.Children {
		if err := child.Walk(fn); err != nil {
			return err
		}
	}

	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
