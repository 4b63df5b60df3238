package bsonvalue

import "testing"

type profile struct {
	Name string `bson:"name"`
	Age  int    `bson:"age"`
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	v, err := Marshal(profile{Name: "ada", Age: 37})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got profile
	if err := v.Unmarshal(&got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Name != "ada" || got.Age != 37 {
		t.Fatalf("Unmarshal = %+v, want {ada 37}", got)
	}
}

func TestCodecEncodeDecodeRoundTrip(t *testing.T) {
	v, err := Marshal(profile{Name: "grace", Age: 28})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var codec Codec
	encoded, err := codec.EncodeValue(v)
	if err != nil {
		t.Fatalf("EncodeValue: %v", err)
	}

	decoded, err := codec.DecodeValue(encoded)
	if err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}

	var got profile
	if err := decoded.Unmarshal(&got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Name != "grace" || got.Age != 28 {
		t.Fatalf("round trip = %+v, want {grace 28}", got)
	}
}

func TestUnmarshalEmptyValueFails(t *testing.T) {
	var v Value
	if err := v.Unmarshal(&profile{}); err == nil {
		t.Fatal("expected error unmarshalling an empty value")
	}
}

func TestDecodeValueEmptyPayloadFails(t *testing.T) {
	var codec Codec
	if _, err := codec.DecodeValue(nil); err == nil {
		t.Fatal("expected error decoding an empty payload")
	}
}
