package routepath

import "testing"

func TestRegistryBuiltinString(t *testing.T) {
	r := NewRegistry()
	tr, ok := r.Lookup("String")
	if !ok {
		t.Fatal("expected String to be registered")
	}
	v, ok := tr("hello")
	if !ok || v != "hello" {
		t.Errorf("String(\"hello\") = %v, %v, want hello, true", v, ok)
	}
}

func TestRegistryBuiltinBool(t *testing.T) {
	r := NewRegistry()
	tr, _ := r.Lookup("Bool")
	if v, ok := tr("true"); !ok || v != true {
		t.Errorf("Bool(\"true\") = %v, %v, want true, true", v, ok)
	}
	if _, ok := tr("nope"); ok {
		t.Error("Bool(\"nope\") should fail")
	}
}

func TestRegistryBuiltinInt64(t *testing.T) {
	r := NewRegistry()
	tr, ok := r.Lookup("Int64")
	if !ok {
		t.Fatal("expected Int64 to be registered")
	}
	v, ok := tr("42")
	if !ok {
		t.Fatal("expected Int64(\"42\") to succeed")
	}
	if i, ok := v.(int64); !ok || i != 42 {
		t.Errorf("Int64(\"42\") = %#v, want int64(42)", v)
	}
}

func TestRegistryBuiltinIntHexAndBinary(t *testing.T) {
	r := NewRegistry()
	hex, _ := r.Lookup("IntX32")
	v, ok := hex("2a")
	if !ok || v.(int32) != 42 {
		t.Errorf("IntX32(\"2a\") = %#v, %v, want int32(42), true", v, ok)
	}

	bin, _ := r.Lookup("IntB8")
	v, ok = bin("101010")
	if !ok || v.(int8) != 42 {
		t.Errorf("IntB8(\"101010\") = %#v, %v, want int8(42), true", v, ok)
	}
}

func TestRegistryBuiltinUint(t *testing.T) {
	r := NewRegistry()
	tr, ok := r.Lookup("Uint16")
	if !ok {
		t.Fatal("expected Uint16 to be registered")
	}
	v, ok := tr("65535")
	if !ok || v.(uint16) != 65535 {
		t.Errorf("Uint16(\"65535\") = %#v, %v, want uint16(65535), true", v, ok)
	}
}

func TestRegistryBuiltinFloatAndDouble(t *testing.T) {
	r := NewRegistry()
	f, _ := r.Lookup("Float")
	v, ok := f("3.5")
	if !ok || v.(float32) != 3.5 {
		t.Errorf("Float(\"3.5\") = %#v, %v, want float32(3.5), true", v, ok)
	}

	d, _ := r.Lookup("Double")
	v, ok = d("3.5")
	if !ok || v.(float64) != 3.5 {
		t.Errorf("Double(\"3.5\") = %#v, %v, want float64(3.5), true", v, ok)
	}
}

func TestRegistryIntOverflowFails(t *testing.T) {
	r := NewRegistry()
	tr, _ := r.Lookup("Int8")
	if _, ok := tr("1000"); ok {
		t.Error("Int8(\"1000\") should fail: overflows int8")
	}
}

func TestRegistryUnknownTransformerNotFound(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup("NoSuchTransform"); ok {
		t.Error("expected lookup of unregistered name to fail")
	}
}

func TestRegistryRegisterCustomTransformer(t *testing.T) {
	r := NewRegistry()
	r.Register("Upper", func(raw string) (any, bool) {
		return raw + "!", true
	})
	tr, ok := r.Lookup("Upper")
	if !ok {
		t.Fatal("expected custom transformer to be registered")
	}
	v, ok := tr("hi")
	if !ok || v != "hi!" {
		t.Errorf("Upper(\"hi\") = %v, %v, want hi!, true", v, ok)
	}
}
