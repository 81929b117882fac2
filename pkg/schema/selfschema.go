package schema

// SelfSchema returns the canonical Schema describing Schema values
// themselves, ported directly from the reference implementation's
// `impl KnownSchema for Schema`. It is the fixed point that lets a Schema
// be self-encoded and self-decoded through the same coder that handles
// ordinary values, used by the self-description testable property.
//
// The Recurse levels below count enclosing frames exactly as the coder
// state machine does: the Enum itself is level 1 from inside one of its
// variants, the outer Option is level 1 from inside its inner schema, and
// so on up the tree.
func SelfSchema() Schema {
	scalarKindEnum := EnumSchema(
		Variant{Name: "U8", Schema: UnitSchema()},
		Variant{Name: "U16", Schema: UnitSchema()},
		Variant{Name: "U32", Schema: UnitSchema()},
		Variant{Name: "U64", Schema: UnitSchema()},
		Variant{Name: "U128", Schema: UnitSchema()},
		Variant{Name: "I8", Schema: UnitSchema()},
		Variant{Name: "I16", Schema: UnitSchema()},
		Variant{Name: "I32", Schema: UnitSchema()},
		Variant{Name: "I64", Schema: UnitSchema()},
		Variant{Name: "I128", Schema: UnitSchema()},
		Variant{Name: "F32", Schema: UnitSchema()},
		Variant{Name: "F64", Schema: UnitSchema()},
		Variant{Name: "Char", Schema: UnitSchema()},
		Variant{Name: "Bool", Schema: UnitSchema()},
	)

	seqFields := StructSchema(
		Field{Name: "len", Schema: OptionSchema(U64Schema())},
		Field{Name: "inner", Schema: RecurseSchema(2)},
	)

	structFieldSchema := StructSchema(
		Field{Name: "name", Schema: StrSchema()},
		Field{Name: "inner", Schema: RecurseSchema(3)},
	)

	enumVariantSchema := StructSchema(
		Field{Name: "name", Schema: StrSchema()},
		Field{Name: "inner", Schema: RecurseSchema(3)},
	)

	return EnumSchema(
		Variant{Name: "Scalar", Schema: scalarKindEnum},
		Variant{Name: "Str", Schema: UnitSchema()},
		Variant{Name: "Bytes", Schema: UnitSchema()},
		Variant{Name: "Unit", Schema: UnitSchema()},
		Variant{Name: "Option", Schema: RecurseSchema(1)},
		Variant{Name: "Seq", Schema: seqFields},
		Variant{Name: "Tuple", Schema: VarSeqSchema(RecurseSchema(2))},
		Variant{Name: "Struct", Schema: VarSeqSchema(structFieldSchema)},
		Variant{Name: "Enum", Schema: VarSeqSchema(enumVariantSchema)},
		Variant{Name: "Recurse", Schema: U64Schema()},
	)
}
