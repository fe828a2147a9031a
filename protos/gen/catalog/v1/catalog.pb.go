// Code generated by protoc-gen-go. DO NOT EDIT.
// versions:
// 	protoc-gen-go v1.36.10
// 	protoc        (unknown)
// source: catalog/v1/catalog.proto

package catalogv1

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

type SellerAvailabilityRequest struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	SellerId      string                 `protobuf:"bytes,1,opt,name=seller_id,json=sellerId,proto3" json:"seller_id,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *SellerAvailabilityRequest) Reset() {
	*x = SellerAvailabilityRequest{}
	mi := &file_catalog_v1_catalog_proto_msgTypes[0]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *SellerAvailabilityRequest) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*SellerAvailabilityRequest) ProtoMessage() {}

func (x *SellerAvailabilityRequest) ProtoReflect() protoreflect.Message {
	mi := &file_catalog_v1_catalog_proto_msgTypes[0]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use SellerAvailabilityRequest.ProtoReflect.Descriptor instead.
func (*SellerAvailabilityRequest) Descriptor() ([]byte, []int) {
	return file_catalog_v1_catalog_proto_rawDescGZIP(), []int{0}
}

func (x *SellerAvailabilityRequest) GetSellerId() string {
	if x != nil {
		return x.SellerId
	}
	return ""
}

type AvailabilityRule struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	Weekday       int32                  `protobuf:"varint,1,opt,name=weekday,proto3" json:"weekday,omitempty"`                            // 0=Sunday .. 6=Saturday
	StartMinute   int32                  `protobuf:"varint,2,opt,name=start_minute,json=startMinute,proto3" json:"start_minute,omitempty"` // minutes since local midnight
	EndMinute     int32                  `protobuf:"varint,3,opt,name=end_minute,json=endMinute,proto3" json:"end_minute,omitempty"`       // exclusive
	Active        bool                   `protobuf:"varint,4,opt,name=active,proto3" json:"active,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *AvailabilityRule) Reset() {
	*x = AvailabilityRule{}
	mi := &file_catalog_v1_catalog_proto_msgTypes[1]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *AvailabilityRule) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*AvailabilityRule) ProtoMessage() {}

func (x *AvailabilityRule) ProtoReflect() protoreflect.Message {
	mi := &file_catalog_v1_catalog_proto_msgTypes[1]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use AvailabilityRule.ProtoReflect.Descriptor instead.
func (*AvailabilityRule) Descriptor() ([]byte, []int) {
	return file_catalog_v1_catalog_proto_rawDescGZIP(), []int{1}
}

func (x *AvailabilityRule) GetWeekday() int32 {
	if x != nil {
		return x.Weekday
	}
	return 0
}

func (x *AvailabilityRule) GetStartMinute() int32 {
	if x != nil {
		return x.StartMinute
	}
	return 0
}

func (x *AvailabilityRule) GetEndMinute() int32 {
	if x != nil {
		return x.EndMinute
	}
	return 0
}

func (x *AvailabilityRule) GetActive() bool {
	if x != nil {
		return x.Active
	}
	return false
}

type SellerAvailabilityResponse struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	SellerId      string                 `protobuf:"bytes,1,opt,name=seller_id,json=sellerId,proto3" json:"seller_id,omitempty"`
	Rules         []*AvailabilityRule    `protobuf:"bytes,2,rep,name=rules,proto3" json:"rules,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *SellerAvailabilityResponse) Reset() {
	*x = SellerAvailabilityResponse{}
	mi := &file_catalog_v1_catalog_proto_msgTypes[2]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *SellerAvailabilityResponse) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*SellerAvailabilityResponse) ProtoMessage() {}

func (x *SellerAvailabilityResponse) ProtoReflect() protoreflect.Message {
	mi := &file_catalog_v1_catalog_proto_msgTypes[2]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use SellerAvailabilityResponse.ProtoReflect.Descriptor instead.
func (*SellerAvailabilityResponse) Descriptor() ([]byte, []int) {
	return file_catalog_v1_catalog_proto_rawDescGZIP(), []int{2}
}

func (x *SellerAvailabilityResponse) GetSellerId() string {
	if x != nil {
		return x.SellerId
	}
	return ""
}

func (x *SellerAvailabilityResponse) GetRules() []*AvailabilityRule {
	if x != nil {
		return x.Rules
	}
	return nil
}

type ProductRequest struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	ProductId     string                 `protobuf:"bytes,1,opt,name=product_id,json=productId,proto3" json:"product_id,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *ProductRequest) Reset() {
	*x = ProductRequest{}
	mi := &file_catalog_v1_catalog_proto_msgTypes[3]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *ProductRequest) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*ProductRequest) ProtoMessage() {}

func (x *ProductRequest) ProtoReflect() protoreflect.Message {
	mi := &file_catalog_v1_catalog_proto_msgTypes[3]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use ProductRequest.ProtoReflect.Descriptor instead.
func (*ProductRequest) Descriptor() ([]byte, []int) {
	return file_catalog_v1_catalog_proto_rawDescGZIP(), []int{3}
}

func (x *ProductRequest) GetProductId() string {
	if x != nil {
		return x.ProductId
	}
	return ""
}

type ProductResponse struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	ProductId     string                 `protobuf:"bytes,1,opt,name=product_id,json=productId,proto3" json:"product_id,omitempty"`
	SellerId      string                 `protobuf:"bytes,2,opt,name=seller_id,json=sellerId,proto3" json:"seller_id,omitempty"`
	Title         string                 `protobuf:"bytes,3,opt,name=title,proto3" json:"title,omitempty"`
	Stock         int32                  `protobuf:"varint,4,opt,name=stock,proto3" json:"stock,omitempty"`
	PriceCredits  int32                  `protobuf:"varint,5,opt,name=price_credits,json=priceCredits,proto3" json:"price_credits,omitempty"`
	Status        string                 `protobuf:"bytes,6,opt,name=status,proto3" json:"status,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *ProductResponse) Reset() {
	*x = ProductResponse{}
	mi := &file_catalog_v1_catalog_proto_msgTypes[4]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *ProductResponse) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*ProductResponse) ProtoMessage() {}

func (x *ProductResponse) ProtoReflect() protoreflect.Message {
	mi := &file_catalog_v1_catalog_proto_msgTypes[4]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use ProductResponse.ProtoReflect.Descriptor instead.
func (*ProductResponse) Descriptor() ([]byte, []int) {
	return file_catalog_v1_catalog_proto_rawDescGZIP(), []int{4}
}

func (x *ProductResponse) GetProductId() string {
	if x != nil {
		return x.ProductId
	}
	return ""
}

func (x *ProductResponse) GetSellerId() string {
	if x != nil {
		return x.SellerId
	}
	return ""
}

func (x *ProductResponse) GetTitle() string {
	if x != nil {
		return x.Title
	}
	return ""
}

func (x *ProductResponse) GetStock() int32 {
	if x != nil {
		return x.Stock
	}
	return 0
}

func (x *ProductResponse) GetPriceCredits() int32 {
	if x != nil {
		return x.PriceCredits
	}
	return 0
}

func (x *ProductResponse) GetStatus() string {
	if x != nil {
		return x.Status
	}
	return ""
}

var File_catalog_v1_catalog_proto protoreflect.FileDescriptor

const file_catalog_v1_catalog_proto_rawDesc = "" +
	"\n" +
	"\x18catalog/v1/catalog.proto\x12\n" +
	"catalog.v1\"8\n" +
	"\x19SellerAvailabilityRequest\x12\x1b\n" +
	"\tseller_id\x18\x01 \x01(\tR\bsellerId\"\x86\x01\n" +
	"\x10AvailabilityRule\x12\x18\n" +
	"\aweekday\x18\x01 \x01(\x05R\aweekday\x12!\n" +
	"\fstart_minute\x18\x02 \x01(\x05R\vstartMinute\x12\x1d\n" +
	"\n" +
	"end_minute\x18\x03 \x01(\x05R\tendMinute\x12\x16\n" +
	"\x06active\x18\x04 \x01(\bR\x06active\"m\n" +
	"\x1aSellerAvailabilityResponse\x12\x1b\n" +
	"\tseller_id\x18\x01 \x01(\tR\bsellerId\x122\n" +
	"\x05rules\x18\x02 \x03(\v2\x1c.catalog.v1.AvailabilityRuleR\x05rules\"/\n" +
	"\x0eProductRequest\x12\x1d\n" +
	"\n" +
	"product_id\x18\x01 \x01(\tR\tproductId\"\xb6\x01\n" +
	"\x0fProductResponse\x12\x1d\n" +
	"\n" +
	"product_id\x18\x01 \x01(\tR\tproductId\x12\x1b\n" +
	"\tseller_id\x18\x02 \x01(\tR\bsellerId\x12\x14\n" +
	"\x05title\x18\x03 \x01(\tR\x05title\x12\x14\n" +
	"\x05stock\x18\x04 \x01(\x05R\x05stock\x12#\n" +
	"\rprice_credits\x18\x05 \x01(\x05R\fpriceCredits\x12\x16\n" +
	"\x06status\x18\x06 \x01(\tR\x06status2\xbf\x01\n" +
	"\x0eCatalogService\x12f\n" +
	"\x15GetSellerAvailability\x12%.catalog.v1.SellerAvailabilityRequest\x1a&.catalog.v1.SellerAvailabilityResponse\x12E\n" +
	"\n" +
	"GetProduct\x12\x1a.catalog.v1.ProductRequest\x1a\x1b.catalog.v1.ProductResponseBHZFgithub.com/electromarket/electromarket/protos/gen/catalog/v1;catalogv1b\x06proto3"

var (
	file_catalog_v1_catalog_proto_rawDescOnce sync.Once
	file_catalog_v1_catalog_proto_rawDescData []byte
)

func file_catalog_v1_catalog_proto_rawDescGZIP() []byte {
	file_catalog_v1_catalog_proto_rawDescOnce.Do(func() {
		file_catalog_v1_catalog_proto_rawDescData = protoimpl.X.CompressGZIP(unsafe.Slice(unsafe.StringData(file_catalog_v1_catalog_proto_rawDesc), len(file_catalog_v1_catalog_proto_rawDesc)))
	})
	return file_catalog_v1_catalog_proto_rawDescData
}

var file_catalog_v1_catalog_proto_msgTypes = make([]protoimpl.MessageInfo, 5)
var file_catalog_v1_catalog_proto_goTypes = []any{
	(*SellerAvailabilityRequest)(nil),  // 0: catalog.v1.SellerAvailabilityRequest
	(*AvailabilityRule)(nil),           // 1: catalog.v1.AvailabilityRule
	(*SellerAvailabilityResponse)(nil), // 2: catalog.v1.SellerAvailabilityResponse
	(*ProductRequest)(nil),             // 3: catalog.v1.ProductRequest
	(*ProductResponse)(nil),            // 4: catalog.v1.ProductResponse
}
var file_catalog_v1_catalog_proto_depIdxs = []int32{
	1, // 0: catalog.v1.SellerAvailabilityResponse.rules:type_name -> catalog.v1.AvailabilityRule
	0, // 1: catalog.v1.CatalogService.GetSellerAvailability:input_type -> catalog.v1.SellerAvailabilityRequest
	3, // 2: catalog.v1.CatalogService.GetProduct:input_type -> catalog.v1.ProductRequest
	2, // 3: catalog.v1.CatalogService.GetSellerAvailability:output_type -> catalog.v1.SellerAvailabilityResponse
	4, // 4: catalog.v1.CatalogService.GetProduct:output_type -> catalog.v1.ProductResponse
	3, // [3:5] is the sub-list for method output_type
	1, // [1:3] is the sub-list for method input_type
	1, // [1:1] is the sub-list for extension type_name
	1, // [1:1] is the sub-list for extension extendee
	0, // [0:1] is the sub-list for field type_name
}

func init() { file_catalog_v1_catalog_proto_init() }
func file_catalog_v1_catalog_proto_init() {
	if File_catalog_v1_catalog_proto != nil {
		return
	}
	type x struct{}
	out := protoimpl.TypeBuilder{
		File: protoimpl.DescBuilder{
			GoPackagePath: reflect.TypeOf(x{}).PkgPath(),
			RawDescriptor: unsafe.Slice(unsafe.StringData(file_catalog_v1_catalog_proto_rawDesc), len(file_catalog_v1_catalog_proto_rawDesc)),
			NumEnums:      0,
			NumMessages:   5,
			NumExtensions: 0,
			NumServices:   1,
		},
		GoTypes:           file_catalog_v1_catalog_proto_goTypes,
		DependencyIndexes: file_catalog_v1_catalog_proto_depIdxs,
		MessageInfos:      file_catalog_v1_catalog_proto_msgTypes,
	}.Build()
	File_catalog_v1_catalog_proto = out.File
	file_catalog_v1_catalog_proto_goTypes = nil
	file_catalog_v1_catalog_proto_depIdxs = nil
}
