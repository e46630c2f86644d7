package extract

import (
	"bytes"
	"context"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/pkg/errors"
	"github.com/tsawler/tabula/core"
)

// PDFCPU reads documents with pdfcpu and places text with tabula's content
// stream extractor, decoding strings through the page fonts.
type PDFCPU struct {
	conf *model.Configuration
}

func NewPDFCPU() *PDFCPU {
	api.DisableConfigDir()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPU{conf: conf}
}

func (p *PDFCPU) Parse(ctx context.Context, data []byte) (doc Document, err error) {
	defer recoverPanic(&err)
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), p.conf)
	if err != nil {
		return nil, errors.Wrap(err, "pdfcpu read")
	}
	return &pdfcpuDocument{ctx: pctx}, nil
}

type pdfcpuDocument struct {
	ctx *model.Context
}

func (d *pdfcpuDocument) NumPages() int {
	return d.ctx.PageCount
}

func (d *pdfcpuDocument) Page(ctx context.Context, index int) (Page, error) {
	if index < 0 || index >= d.ctx.PageCount {
		return nil, errors.Errorf("page index %d out of range [0, %d)", index, d.ctx.PageCount)
	}
	return &pdfcpuPage{ctx: d.ctx, pageNr: index + 1}, nil
}

type pdfcpuPage struct {
	ctx    *model.Context
	pageNr int
}

func (p *pdfcpuPage) TextContent(ctx context.Context) (items []TextItem, err error) {
	defer recoverPanic(&err)
	r, err := pdfcpu.ExtractPageContent(p.ctx, p.pageNr)
	if err != nil {
		return nil, errors.Wrapf(err, "pdfcpu page %d content", p.pageNr)
	}
	if r == nil {
		return []TextItem{}, nil
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "pdfcpu page %d content", p.pageNr)
	}
	return textItems(content, &Fonts{Resources: p.resources(), Resolve: p.resolve})
}

// resources returns the page resources, inherited ones included.
func (p *pdfcpuPage) resources() core.Dict {
	_, _, inherited, err := p.ctx.PageDict(p.pageNr, true)
	if err != nil || inherited == nil || inherited.Resources == nil {
		return nil
	}
	d, _ := tabulaObject(inherited.Resources).(core.Dict)
	return d
}

func (p *pdfcpuPage) resolve(ref core.IndirectRef) (core.Object, error) {
	o, err := p.ctx.Dereference(types.IndirectRef{
		ObjectNumber:     types.Integer(ref.Number),
		GenerationNumber: types.Integer(ref.Generation),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "pdfcpu object %d", ref.Number)
	}
	return tabulaObject(o), nil
}

// tabulaObject converts a pdfcpu object into tabula's model. Indirect
// references are kept; tabula resolves them on demand.
func tabulaObject(o types.Object) core.Object {
	switch v := o.(type) {
	case types.Boolean:
		return core.Bool(v.Value())
	case types.Integer:
		return core.Int(v.Value())
	case types.Float:
		return core.Real(v.Value())
	case types.Name:
		return core.Name(v.Value())
	case types.StringLiteral:
		if b, err := types.Unescape(v.Value()); err == nil {
			return core.String(b)
		}
		return core.String(v.Value())
	case types.HexLiteral:
		if b, err := v.Bytes(); err == nil {
			return core.String(b)
		}
		return core.String(v.Value())
	case types.IndirectRef:
		return core.IndirectRef{Number: v.ObjectNumber.Value(), Generation: v.GenerationNumber.Value()}
	case *types.IndirectRef:
		return tabulaObject(*v)
	case types.Array:
		arr := make(core.Array, len(v))
		for i, el := range v {
			arr[i] = tabulaObject(el)
		}
		return arr
	case types.Dict:
		d := make(core.Dict, len(v))
		for k, el := range v {
			d[k] = tabulaObject(el)
		}
		return d
	case types.StreamDict:
		return tabulaStream(v)
	case *types.StreamDict:
		return tabulaStream(*v)
	}
	return core.Null{}
}

// tabulaStream hands over decoded stream data when pdfcpu supports the
// filters, and the raw data with its filters otherwise.
func tabulaStream(sd types.StreamDict) *core.Stream {
	d, _ := tabulaObject(sd.Dict).(core.Dict)
	if err := sd.Decode(); err == nil {
		delete(d, "Filter")
		delete(d, "DecodeParms")
		return &core.Stream{Dict: d, Data: sd.Content}
	}
	return &core.Stream{Dict: d, Data: sd.Raw}
}
