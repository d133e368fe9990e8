package bytecode

import (
	"strconv"

	"github.com/cwbudde/go-pyvm/internal/object"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DumpJSON renders a compiled Code object's instruction vector, constant
// pool and except table as JSON, for `pyvm dump` to print and
// `pyvm dump --query` to pick apart with a gjson path. Nested
// function/class bodies in the constant pool are dumped recursively so the
// whole program's shape is visible from one document.
func DumpJSON(code *object.Code) (string, error) {
	doc := "{}"
	var err error

	doc, err = sjson.Set(doc, "name", code.Name)
	if err != nil {
		return "", err
	}
	doc, err = sjson.Set(doc, "params", code.Params)
	if err != nil {
		return "", err
	}

	for i, instr := range code.Instructions {
		base := "instructions." + strconv.Itoa(i)
		doc, err = sjson.Set(doc, base+".op", instr.Op.String())
		if err != nil {
			return "", err
		}
		doc, err = sjson.Set(doc, base+".arg", instr.Arg)
		if err != nil {
			return "", err
		}
		if instr.Name != "" {
			doc, err = sjson.Set(doc, base+".name", instr.Name)
			if err != nil {
				return "", err
			}
		}
	}

	for i, c := range code.Consts {
		base := "consts." + strconv.Itoa(i)
		doc, err = sjson.Set(doc, base+".type", c.TypeOf().Name)
		if err != nil {
			return "", err
		}
		if nested, ok := c.(*object.Code); ok {
			nestedJSON, err := DumpJSON(nested)
			if err != nil {
				return "", err
			}
			doc, err = sjson.SetRaw(doc, base+".code", nestedJSON)
			if err != nil {
				return "", err
			}
			continue
		}
		doc, err = sjson.Set(doc, base+".repr", object.Repr(c))
		if err != nil {
			return "", err
		}
	}

	for i, ec := range code.ExceptTable {
		base := "except_table." + strconv.Itoa(i)
		doc, err = sjson.Set(doc, base+".handler_key", ec.HandlerKey)
		if err != nil {
			return "", err
		}
		doc, err = sjson.Set(doc, base+".type_name", ec.TypeName)
		if err != nil {
			return "", err
		}
		doc, err = sjson.Set(doc, base+".bind_name", ec.BindName)
		if err != nil {
			return "", err
		}
		doc, err = sjson.Set(doc, base+".body_start", ec.BodyStart)
		if err != nil {
			return "", err
		}
	}

	return doc, nil
}

// QueryJSON evaluates a gjson path against a document produced by
// DumpJSON, returning the raw matched text (empty string if nothing
// matched).
func QueryJSON(doc, path string) string {
	return gjson.Get(doc, path).Raw
}

