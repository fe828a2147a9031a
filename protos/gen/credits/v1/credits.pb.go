// Code generated by protoc-gen-go. DO NOT EDIT.
// versions:
// 	protoc-gen-go v1.36.10
// 	protoc        (unknown)
// source: credits/v1/credits.proto

package creditsv1

import (
	protoreflect "google.golang.org/protobuf/reflect/protoreflect"
	protoimpl "google.golang.org/protobuf/runtime/protoimpl"
	reflect "reflect"
	sync "sync"
	unsafe "unsafe"
)

const (
	// Verify that this generated code is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(20 - protoimpl.MinVersion)
	// Verify that runtime/protoimpl is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(protoimpl.MaxVersion - 20)
)

type BalanceRequest struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	UserId        string                 `protobuf:"bytes,1,opt,name=user_id,json=userId,proto3" json:"user_id,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *BalanceRequest) Reset() {
	*x = BalanceRequest{}
	mi := &file_credits_v1_credits_proto_msgTypes[0]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *BalanceRequest) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*BalanceRequest) ProtoMessage() {}

func (x *BalanceRequest) ProtoReflect() protoreflect.Message {
	mi := &file_credits_v1_credits_proto_msgTypes[0]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use BalanceRequest.ProtoReflect.Descriptor instead.
func (*BalanceRequest) Descriptor() ([]byte, []int) {
	return file_credits_v1_credits_proto_rawDescGZIP(), []int{0}
}

func (x *BalanceRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

type BalanceResponse struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	UserId        string                 `protobuf:"bytes,1,opt,name=user_id,json=userId,proto3" json:"user_id,omitempty"`
	Credits       int32                  `protobuf:"varint,2,opt,name=credits,proto3" json:"credits,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *BalanceResponse) Reset() {
	*x = BalanceResponse{}
	mi := &file_credits_v1_credits_proto_msgTypes[1]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *BalanceResponse) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*BalanceResponse) ProtoMessage() {}

func (x *BalanceResponse) ProtoReflect() protoreflect.Message {
	mi := &file_credits_v1_credits_proto_msgTypes[1]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use BalanceResponse.ProtoReflect.Descriptor instead.
func (*BalanceResponse) Descriptor() ([]byte, []int) {
	return file_credits_v1_credits_proto_rawDescGZIP(), []int{1}
}

func (x *BalanceResponse) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

func (x *BalanceResponse) GetCredits() int32 {
	if x != nil {
		return x.Credits
	}
	return 0
}

var File_credits_v1_credits_proto protoreflect.FileDescriptor

const file_credits_v1_credits_proto_rawDesc = "" +
	"\n" +
	"\x18credits/v1/credits.proto\x12\n" +
	"credits.v1\")\n" +
	"\x0eBalanceRequest\x12\x17\n" +
	"\auser_id\x18\x01 \x01(\tR\x06userId\"D\n" +
	"\x0fBalanceResponse\x12\x17\n" +
	"\auser_id\x18\x01 \x01(\tR\x06userId\x12\x18\n" +
	"\acredits\x18\x02 \x01(\x05R\acredits2W\n" +
	"\x0eCreditsService\x12E\n" +
	"\n" +
	"GetBalance\x12\x1a.credits.v1.BalanceRequest\x1a\x1b.credits.v1.BalanceResponseBHZFgithub.com/electromarket/electromarket/protos/gen/credits/v1;creditsv1b\x06proto3"

var (
	file_credits_v1_credits_proto_rawDescOnce sync.Once
	file_credits_v1_credits_proto_rawDescData []byte
)

func file_credits_v1_credits_proto_rawDescGZIP() []byte {
	file_credits_v1_credits_proto_rawDescOnce.Do(func() {
		file_credits_v1_credits_proto_rawDescData = protoimpl.X.CompressGZIP(unsafe.Slice(unsafe.StringData(file_credits_v1_credits_proto_rawDesc), len(file_credits_v1_credits_proto_rawDesc)))
	})
	return file_credits_v1_credits_proto_rawDescData
}

var file_credits_v1_credits_proto_msgTypes = make([]protoimpl.MessageInfo, 2)
var file_credits_v1_credits_proto_goTypes = []any{
	(*BalanceRequest)(nil),  // 0: credits.v1.BalanceRequest
	(*BalanceResponse)(nil), // 1: credits.v1.BalanceResponse
}
var file_credits_v1_credits_proto_depIdxs = []int32{
	0, // 0: credits.v1.CreditsService.GetBalance:input_type -> credits.v1.BalanceRequest
	1, // 1: credits.v1.CreditsService.GetBalance:output_type -> credits.v1.BalanceResponse
	1, // [1:2] is the sub-list for method output_type
	0, // [0:1] is the sub-list for method input_type
	0, // [0:0] is the sub-list for extension type_name
	0, // [0:0] is the sub-list for extension extendee
	0, // [0:0] is the sub-list for field type_name
}

func init() { file_credits_v1_credits_proto_init() }
func file_credits_v1_credits_proto_init() {
	if File_credits_v1_credits_proto != nil {
		return
	}
	type x struct{}
	out := protoimpl.TypeBuilder{
		File: protoimpl.DescBuilder{
			GoPackagePath: reflect.TypeOf(x{}).PkgPath(),
			RawDescriptor: unsafe.Slice(unsafe.StringData(file_credits_v1_credits_proto_rawDesc), len(file_credits_v1_credits_proto_rawDesc)),
			NumEnums:      0,
			NumMessages:   2,
			NumExtensions: 0,
			NumServices:   1,
		},
		GoTypes:           file_credits_v1_credits_proto_goTypes,
		DependencyIndexes: file_credits_v1_credits_proto_depIdxs,
		MessageInfos:      file_credits_v1_credits_proto_msgTypes,
	}.Build()
	File_credits_v1_credits_proto = out.File
	file_credits_v1_credits_proto_goTypes = nil
	file_credits_v1_credits_proto_depIdxs = nil
}
